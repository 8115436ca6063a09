package cache

import (
	"strconv"
	"strings"
	"time"

	"github.com/sandistd/carbon-footprint-app/internal/report/domain"
)

const keyPrefix = "carbon:report:"

// Key derives a stable cache key from a normalized filter. The current year
// is part of the key because it decides which trajectory actuals are shown.
func Key(filter domain.DashboardFilter, currentYear int) string {
	var b strings.Builder
	b.WriteString("scope=")
	b.WriteString(filter.Scope)
	b.WriteString("|dept=")
	if filter.Department != nil {
		b.WriteString(*filter.Department)
	}
	b.WriteString("|from=")
	writeDate(&b, filter.DateFrom)
	b.WriteString("|to=")
	writeDate(&b, filter.DateTo)
	b.WriteString("|year=")
	if filter.Year != nil {
		b.WriteString(strconv.Itoa(*filter.Year))
	}
	b.WriteString("|now=")
	b.WriteString(strconv.Itoa(currentYear))
	return b.String()
}

func writeDate(b *strings.Builder, t *time.Time) {
	if t != nil {
		b.WriteString(t.Format(time.DateOnly))
	}
}

func entryKey(generation int64, key string) string {
	return keyPrefix + "g" + strconv.FormatInt(generation, 10) + ":" + key
}
