package protocol

// Machine is the LoRaWAN device state machine. It owns session keys, frame
// counters and the radio binding; the dispatch core only moves it in and out
// of the shared store and feeds it events.
//
// HandleEvent advances the machine by exactly one event and reports either a
// Response or an error wrapping one of ErrRadio, ErrSession or ErrNoSession,
// never both.
//
// TakeDownlink hands over the pending downlink frame, if any, clearing it
// from the machine. It is only meaningful right after a DownlinkReceived
// response.
type Machine interface {
	HandleEvent(ev Event) (Response, error)
	TakeDownlink() *Downlink
}
