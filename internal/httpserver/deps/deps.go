package deps

import (
	"time"

	"github.com/tahp/LinkManager/internal/links"
	"github.com/tahp/LinkManager/internal/logger"
	"github.com/tahp/LinkManager/internal/settings"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	TimeNow   func() time.Time  // for testing, defaults to time.Now
	Links     *links.Repository // link collection
	Settings  *settings.Store   // page size and date formats
	Backend   string            // name of the active storage backend
}

// Now returns TimeNow(), or time.Now() when TimeNow is unset.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
