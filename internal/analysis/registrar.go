package analysis

// TrackRegistrar keeps the first sighting of every track id seen in a
// session. Records are never overwritten or removed.
type TrackRegistrar struct {
	records map[int]TrackRecord
}

func NewTrackRegistrar() *TrackRegistrar {
	return &TrackRegistrar{
		records: make(map[int]TrackRecord),
	}
}

// Observe records trackID if it has not been seen before and reports whether
// a new record was created.
func (r *TrackRegistrar) Observe(trackID, frameIndex int, confidence float32, box Box) bool {
	if _, ok := r.records[trackID]; ok {
		return false
	}
	r.records[trackID] = TrackRecord{
		FirstSeenFrame: frameIndex,
		Confidence:     confidence,
		SampleBox:      box.Array(),
	}
	return true
}

func (r *TrackRegistrar) Len() int {
	return len(r.records)
}

func (r *TrackRegistrar) Get(trackID int) (TrackRecord, bool) {
	rec, ok := r.records[trackID]
	return rec, ok
}

// Records returns a copy of the registry.
func (r *TrackRegistrar) Records() map[int]TrackRecord {
	out := make(map[int]TrackRecord, len(r.records))
	for id, rec := range r.records {
		out[id] = rec
	}
	return out
}
