package extract

import "fmt"

// Era is the page layout generation an issue was published with.
type Era int

const (
	EraOld Era = iota
	EraNew
)

func (e Era) String() string {
	if e == EraNew {
		return "new"
	}
	return "old"
}

// Cutover is the first issue month that uses the new layout.
type Cutover struct {
	Year  int `yaml:"year"`
	Month int `yaml:"month"`
}

// DefaultCutover is the March 2025 redesign.
var DefaultCutover = Cutover{Year: 2025, Month: 3}

func (c Cutover) String() string {
	return fmt.Sprintf("%d-%02d", c.Year, c.Month)
}

// EraOf places an issue month relative to the cutover.
func EraOf(year, month int, c Cutover) Era {
	if year > c.Year || (year == c.Year && month >= c.Month) {
		return EraNew
	}
	return EraOld
}
