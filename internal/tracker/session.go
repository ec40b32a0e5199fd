package tracker

import (
	"context"
	"sort"

	"flockscope/internal/analysis"
)

type track struct {
	id   int
	box  analysis.Box
	lost int
}

// Session associates detections across consecutive frames by greedy IoU
// matching. Ids start at 1 and are never reused within a session.
type Session struct {
	model  *Model
	tracks []*track
	nextID int
}

func newSession(m *Model) *Session {
	return &Session{
		model:  m,
		nextID: 1,
	}
}

func (s *Session) Track(ctx context.Context, f *analysis.Frame, confThresh float32, targetClass int) ([]analysis.RawDetection, error) {
	dets, err := s.model.detector.Detect(ctx, f.Canvas)
	if err != nil {
		return nil, err
	}

	kept := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.ClassID != targetClass || d.Confidence < confThresh {
			continue
		}
		kept = append(kept, d)
	}
	return s.associate(kept), nil
}

type candidate struct {
	det   int
	track int
	iou   float64
}

func (s *Session) associate(dets []Detection) []analysis.RawDetection {
	var candidates []candidate
	for i, d := range dets {
		for j, t := range s.tracks {
			if v := IoU(d.Box, t.box); v >= s.model.conf.IoUThreshold {
				candidates = append(candidates, candidate{det: i, track: j, iou: v})
			}
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].iou > candidates[b].iou
	})

	detTrack := make([]int, len(dets))
	for i := range detTrack {
		detTrack[i] = -1
	}
	trackUsed := make([]bool, len(s.tracks))
	for _, c := range candidates {
		if detTrack[c.det] >= 0 || trackUsed[c.track] {
			continue
		}
		detTrack[c.det] = c.track
		trackUsed[c.track] = true
	}

	out := make([]analysis.RawDetection, len(dets))
	for i, d := range dets {
		var t *track
		if j := detTrack[i]; j >= 0 {
			t = s.tracks[j]
			t.box = d.Box
			t.lost = 0
		} else {
			t = &track{id: s.nextID, box: d.Box}
			s.nextID++
			s.tracks = append(s.tracks, t)
		}
		out[i] = analysis.RawDetection{
			TrackID:    t.id,
			Box:        d.Box,
			Confidence: d.Confidence,
		}
	}

	alive := s.tracks[:0]
	for j, t := range s.tracks {
		if j < len(trackUsed) && !trackUsed[j] {
			t.lost++
		}
		if t.lost <= s.model.conf.MaxLost {
			alive = append(alive, t)
		}
	}
	s.tracks = alive

	return out
}

// IoU returns the intersection over union of two boxes, 0 when either box is
// empty.
func IoU(a, b analysis.Box) float64 {
	ra, rb := a.Rect(), b.Rect()
	inter := ra.Intersect(rb)
	if inter.Empty() {
		return 0
	}
	interArea := float64(inter.Dx() * inter.Dy())
	union := float64(ra.Dx()*ra.Dy()) + float64(rb.Dx()*rb.Dy()) - interArea
	if union <= 0 {
		return 0
	}
	return interArea / union
}
