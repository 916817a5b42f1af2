package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/lanterndata/extupdate/extupdate/compat"
	"github.com/lanterndata/extupdate/extupdate/pairs"
	"github.com/lanterndata/extupdate/extupdate/version"
)

// SchedulePresenter lists the trials a run would attempt, without running them.
type SchedulePresenter struct {
	schedule        pairs.Schedule
	platformVersion string
	matrix          *compat.Matrix
}

func NewSchedulePresenter(schedule pairs.Schedule, platformVersion string, matrix *compat.Matrix) *SchedulePresenter {
	return &SchedulePresenter{
		schedule:        schedule,
		platformVersion: platformVersion,
		matrix:          matrix,
	}
}

func (p *SchedulePresenter) Present(output io.Writer) error {
	if len(p.schedule.Trials) == 0 {
		if _, err := io.WriteString(output, "No upgrade trials scheduled\n"); err != nil {
			return err
		}
	} else {
		table := newTable(output, []string{"#", "From", "To"})
		for i, t := range p.schedule.Trials {
			table.Append([]string{fmt.Sprintf("%d", i+1), t.From.String(), t.To.String()})
		}
		table.Render()
	}

	if p.schedule.Untagged != nil {
		if _, err := fmt.Fprintf(output, "target %s is not tagged: it is built from the current checkout\n", p.schedule.Untagged); err != nil {
			return err
		}
	}

	for _, v := range p.schedule.Skipped {
		if _, err := fmt.Fprintf(output, "skipping %s: incompatible with platform version %s\n", v, p.platformVersion); err != nil {
			return err
		}
	}

	return p.presentCompatibility(output)
}

func (p *SchedulePresenter) presentCompatibility(output io.Writer) error {
	var err error
	switch {
	case p.platformVersion == "":
		if platforms := p.matrix.Platforms(); len(platforms) > 0 {
			_, err = fmt.Fprintf(output, "no platform version given: exclusions for platform versions %s are not applied\n", strings.Join(platforms, ", "))
		}
	default:
		if excluded := p.matrix.Excluded(p.platformVersion); len(excluded) > 0 {
			_, err = fmt.Fprintf(output, "excluded on platform version %s: %s\n", p.platformVersion, strings.Join(version.Versions(excluded).Strings(), ", "))
		}
	}
	return err
}
