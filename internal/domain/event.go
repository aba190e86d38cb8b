package domain

import "time"

// TrackDocument is one serialized track ready for delivery to a sink.
type TrackDocument struct {
	StormID    string
	Name       string
	RecordType string
	Start      time.Time
	End        time.Time
	Body       []byte // canonical ATCF lines
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
