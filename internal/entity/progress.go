package entity

import "time"

// ResumeEdgeSeconds is the lead-in/lead-out window: offsets inside the first
// or last ten seconds are not worth resuming into.
const ResumeEdgeSeconds = 10

// ResumePoint is the per-clip resume offset, independent of any session cursor.
type ResumePoint struct {
	VideoID   string
	Position  float64
	Duration  float64
	UpdatedAt time.Time
}

// Clone returns a copy of the resume point.
func (r *ResumePoint) Clone() *ResumePoint {
	if r == nil {
		return nil
	}
	out := *r
	return &out
}

// Resumable reports whether the saved offset is worth offering as a resume
// position: past the lead-in and not within the final seconds.
func (r *ResumePoint) Resumable() bool {
	if r == nil || r.Duration <= 0 {
		return false
	}
	return r.Position > ResumeEdgeSeconds && r.Position < r.Duration-ResumeEdgeSeconds
}
