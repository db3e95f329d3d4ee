package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// Report summarizes one namespace, or all of them when Namespace is empty.
//
// Hits and Misses are global counters: a namespace report carries the same
// rates as the aggregate one.
type Report struct {
	Namespace       string    `json:"namespace,omitempty"`
	EntryCount      int       `json:"entryCount"`
	TotalBytes      int64     `json:"totalBytes"`
	Hits            uint64    `json:"hits"`
	Misses          uint64    `json:"misses"`
	Evictions       uint64    `json:"evictions"`
	HitRate         float64   `json:"hitRate"`
	MissRate        float64   `json:"missRate"`
	OldestTimestamp time.Time `json:"oldestTimestamp"`
	NewestTimestamp time.Time `json:"newestTimestamp"`
}

// Counters is a point-in-time copy of the global counters.
type Counters struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// rates returns hits/(hits+misses) and misses/(hits+misses), or zeros when
// nothing has been looked up yet.
func rates(hits, misses uint64) (float64, float64) {
	total := hits + misses
	if total == 0 {
		return 0, 0
	}
	return float64(hits) / float64(total), float64(misses) / float64(total)
}

// Counters returns the current global counters.
func (c *Cache) Counters() Counters {
	return Counters{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Stats returns a report aggregated over every namespace.
func (c *Cache) Stats() Report {
	r := c.baseReport()
	for _, s := range c.stores {
		mergeUsage(&r, s.usage())
	}
	return r
}

// NamespaceStats returns a report scoped to ns.
func (c *Cache) NamespaceStats(ns Namespace) Report {
	r := c.baseReport()
	r.Namespace = ns.String()
	mergeUsage(&r, c.store(ns).usage())
	return r
}

func (c *Cache) baseReport() Report {
	counters := c.Counters()
	hitRate, missRate := rates(counters.Hits, counters.Misses)
	return Report{
		Hits:      counters.Hits,
		Misses:    counters.Misses,
		Evictions: counters.Evictions,
		HitRate:   hitRate,
		MissRate:  missRate,
	}
}

func mergeUsage(r *Report, u usage) {
	r.EntryCount += u.count
	r.TotalBytes += u.bytes
	if !u.oldest.IsZero() && (r.OldestTimestamp.IsZero() || u.oldest.Before(r.OldestTimestamp)) {
		r.OldestTimestamp = u.oldest
	}
	if u.newest.After(r.NewestTimestamp) {
		r.NewestTimestamp = u.newest
	}
}

// diagnostics is the document produced by ExportStats.
type diagnostics struct {
	Config     persistedConfig   `json:"config"`
	Stats      Counters          `json:"stats"`
	Total      Report            `json:"total"`
	Namespaces map[string]Report `json:"namespaces"`
	Persisting bool              `json:"persisting"`
	Timestamp  int64             `json:"timestamp"`
}

// ExportStats renders the configuration, counters and per-namespace reports
// as an indented JSON document for diagnostics.
func (c *Cache) ExportStats() (string, error) {
	d := diagnostics{
		Config:     toPersistedConfig(c.Config()),
		Stats:      c.Counters(),
		Total:      c.Stats(),
		Namespaces: make(map[string]Report, namespaceCount),
		Persisting: c.persisting(),
		Timestamp:  c.now().UnixMilli(),
	}
	for _, ns := range Namespaces() {
		d.Namespaces[ns.String()] = c.NamespaceStats(ns)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling cache diagnostics: %w", err)
	}
	return string(data), nil
}
