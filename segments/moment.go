package segments

import (
	"fmt"
	"sort"

	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/transcript"
)

// Moment is an externally selected highlight. Start and End are MM:SS or
// HH:MM:SS timestamps; Order is the display position.
type Moment struct {
	Start      string `json:"start_time" validate:"required,timestamp" jsonschema:"description=Start timestamp as MM:SS or HH:MM:SS"`
	End        string `json:"end_time" validate:"required,timestamp" jsonschema:"description=End timestamp as MM:SS or HH:MM:SS"`
	Order      int    `json:"order" jsonschema:"description=Display position starting at 1"`
	Title      string `json:"title" jsonschema:"description=Short catchy title"`
	Reason     string `json:"reason" jsonschema:"description=Why this moment is interesting"`
	ViralScore int    `json:"viral_score,omitempty" jsonschema:"description=Viral potential from 1 to 10"`
}

// Bounds parses the moment's timestamps.
func (m Moment) Bounds() (start, end float64, err error) {
	if start, err = transcript.ParseTimestamp(m.Start); err != nil {
		return 0, 0, err
	}
	if end, err = transcript.ParseTimestamp(m.End); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// FromMoments orders moments by Order (stable for ties) and turns each into
// exactly one segment labeled with its title. Overlaps and duplicates are
// kept as given.
func FromMoments(moments []Moment) ([]Segment, error) {
	if len(moments) == 0 {
		return nil, errors.InvalidInput("moments", "no moments to compile")
	}
	sorted := append([]Moment(nil), moments...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	segs := make([]Segment, len(sorted))
	for i, m := range sorted {
		start, end, err := m.Bounds()
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("moments[%d]", i), err.Error())
		}
		if end <= start {
			return nil, errors.InvalidInput(fmt.Sprintf("moments[%d]", i),
				fmt.Sprintf("end %s is not after start %s", m.End, m.Start))
		}
		segs[i] = Segment{Start: start, End: end, Label: m.Title}
	}
	return segs, nil
}
