package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"jewelry-admin/internal/app"
)

// listFlags are shared by the list and export commands.
type listFlags struct {
	search   string
	remote   bool
	category string
	status   string
	sort     string
	desc     bool
	page     int
	pageSize int
	from     string
	to       string
}

func (f *listFlags) register(cmd *cobra.Command, withDates bool) {
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive text search")
	cmd.Flags().StringVar(&f.status, "status", "", "Filter by status: active or inactive")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "Rows per page (defaults to config)")
	if withDates {
		cmd.Flags().StringVar(&f.from, "from", "", "Created on or after (RFC3339 or YYYY-MM-DD)")
		cmd.Flags().StringVar(&f.to, "to", "", "Created on or before (RFC3339 or YYYY-MM-DD)")
	}
}

func (f *listFlags) options() (app.ListOptions, error) {
	opts := app.ListOptions{
		Search:   f.search,
		Remote:   f.remote,
		Category: f.category,
		Status:   f.status,
		Sort:     f.sort,
		Desc:     f.desc,
		Page:     f.page,
		PageSize: f.pageSize,
	}
	var err error
	if opts.From, err = parseTime("--from", f.from); err != nil {
		return opts, err
	}
	if opts.To, err = parseEndTime("--to", f.to, true); err != nil {
		return opts, err
	}
	return opts, nil
}

const dateLayout = "2006-01-02"

func parseTime(flag, raw string) (*time.Time, error) {
	t, _, err := parseBound(flag, raw)
	return t, err
}

// parseEndTime parses an upper bound. A bare date covers the whole day: the
// last instant of it when inclusive, the following midnight otherwise.
func parseEndTime(flag, raw string, inclusive bool) (*time.Time, error) {
	t, dateOnly, err := parseBound(flag, raw)
	if err != nil || t == nil || !dateOnly {
		return t, err
	}
	end := t.AddDate(0, 0, 1)
	if inclusive {
		end = end.Add(-time.Nanosecond)
	}
	return &end, nil
}

func parseBound(flag, raw string) (*time.Time, bool, error) {
	if raw == "" {
		return nil, false, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, false, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, false, fmt.Errorf("invalid %s value: %w", flag, err)
	}
	return &t, true, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
