package main

import "time"

// MapEventType identifies a global map modifier
type MapEventType int

const (
	MapEventRain  MapEventType = 0
	MapEventNight MapEventType = 1
	MapEventStorm MapEventType = 2
)

// MapEventDef describes an event. Effects are applied entirely by the
// client; the server is only the announcer.
type MapEventDef struct {
	Name     string
	Effect   string
	Duration time.Duration
}

var mapEventDefs = map[MapEventType]MapEventDef{
	MapEventRain:  {Name: "rain", Effect: "visibility", Duration: 30 * time.Second},
	MapEventNight: {Name: "night", Effect: "darkness", Duration: 20 * time.Second},
	MapEventStorm: {Name: "storm", Effect: "movement", Duration: 15 * time.Second},
}

func (t MapEventType) Def() MapEventDef {
	return mapEventDefs[t]
}

// randomMapEvent picks one of the closed set
func randomMapEvent() MapEventType {
	return MapEventType(randIntn(len(mapEventDefs)))
}
