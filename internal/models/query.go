package models

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// ListQuery narrows a list request. Zero fields are ignored.
type ListQuery struct {
	Status  []string
	BandID  string
	From    Date
	To      Date
	OwnerID string
	Limit   int
}

// HasStatus reports whether an issue in status s passes the status filter.
func (q ListQuery) HasStatus(s IssueStatus) bool {
	return len(q.Status) == 0 || slices.Contains(q.Status, string(s))
}

func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if len(q.Status) > 0 {
		v.Set("status", strings.Join(q.Status, ","))
	}
	if q.BandID != "" {
		v.Set("band_id", q.BandID)
	}
	if q.From != "" {
		v.Set("from", q.From.String())
	}
	if q.To != "" {
		v.Set("to", q.To.String())
	}
	if q.OwnerID != "" {
		v.Set("owner", q.OwnerID)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func ParseListQuery(v url.Values) (ListQuery, error) {
	q := ListQuery{
		BandID:  v.Get("band_id"),
		OwnerID: v.Get("owner"),
	}
	if s := v.Get("status"); s != "" {
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if !IssueStatus(part).Valid() {
				return ListQuery{}, invalid("status", fmt.Sprintf("unknown status %q", part))
			}
			q.Status = append(q.Status, part)
		}
	}
	for field, dst := range map[string]*Date{"from": &q.From, "to": &q.To} {
		s := v.Get(field)
		if s == "" {
			continue
		}
		d, err := ParseDate(s)
		if err != nil {
			return ListQuery{}, invalid(field, err.Error())
		}
		*dst = d
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return ListQuery{}, invalid("limit", "must be a non-negative integer")
		}
		q.Limit = n
	}
	return q, nil
}
