package basemap

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Selection is the user's basemap choice: a concrete catalog id, the virtual
// "random" pick, or "none". It persists as a JSON number or one of the two
// reserved strings.
type Selection struct {
	ID     int
	Random bool
	None   bool
}

func IDSelection(id int) Selection { return Selection{ID: id} }
func RandomSelection() Selection   { return Selection{Random: true} }
func NoneSelection() Selection     { return Selection{None: true} }

func (s Selection) String() string {
	switch {
	case s.None:
		return "none"
	case s.Random:
		return "random"
	default:
		return strconv.Itoa(s.ID)
	}
}

func (s Selection) MarshalJSON() ([]byte, error) {
	switch {
	case s.None:
		return json.Marshal("none")
	case s.Random:
		return json.Marshal("random")
	default:
		return json.Marshal(s.ID)
	}
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		*s = Selection{ID: id}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("basemap selection: expected id, %q or %q: %w", "random", "none", err)
	}

	switch str {
	case "random":
		*s = Selection{Random: true}
	case "none":
		*s = Selection{None: true}
	default:
		return fmt.Errorf("basemap selection: unknown virtual id %q", str)
	}
	return nil
}
