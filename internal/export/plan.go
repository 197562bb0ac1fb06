// Package export decides which files a run produces and renders them.
package export

import (
	"regexp"
	"strings"

	"sessionics/internal/inflect"
	"sessionics/internal/model"
)

const (
	AllSessionsName = "all-sessions"
	ReservedName    = "reserved"
)

// Format is the on-disk encoding of a job.
type Format int

const (
	FormatICS Format = iota
	FormatCSV
)

func (f Format) String() string {
	if f == FormatCSV {
		return "csv"
	}
	return "ics"
}

// Ext is the filename extension including the dot.
func (f Format) Ext() string { return "." + f.String() }

// Columns selects the CSV column set.
type Columns int

const (
	// ColumnsBasic omits Capacity, Topic and Area of Interest.
	ColumnsBasic Columns = iota
	ColumnsRich
)

// Group is one session type and its sessions in input order.
type Group struct {
	Key      string
	Sessions []model.Session
}

// GroupByType buckets sessions by SessionType. Groups appear in the order
// their key was first seen; every session lands in exactly one group.
func GroupByType(sessions []model.Session) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, s := range sessions {
		i, ok := index[s.SessionType]
		if !ok {
			i = len(groups)
			index[s.SessionType] = i
			groups = append(groups, Group{Key: s.SessionType})
		}
		groups[i].Sessions = append(groups[i].Sessions, s)
	}
	return groups
}

// All concatenates the groups in order.
func All(groups []Group) []model.Session {
	var out []model.Session
	for _, g := range groups {
		out = append(out, g.Sessions...)
	}
	return out
}

// Job is one output file.
type Job struct {
	Name     string
	Format   Format
	Columns  Columns
	Sessions []model.Session
}

// Filename is the normalized name plus extension.
func (j Job) Filename() string {
	return NormalizeFilename(j.Name) + j.Format.Ext()
}

type Options struct {
	// ReservedOnly suppresses the per-type and combined exports.
	ReservedOnly bool
	Columns      Columns
}

// Plan lays out the jobs of one run:
//
//	one ICS per session type of interests, named after the plural type
//	all-sessions.ics, the type groups concatenated
//	all-sessions.csv, interests in input order
//	reserved.ics, only when reserved is non-empty
//
// Job order follows first appearance of each type in interests.
func Plan(interests, reserved []model.Session, opts Options) []Job {
	var jobs []Job
	if !opts.ReservedOnly {
		groups := GroupByType(interests)
		for _, g := range groups {
			jobs = append(jobs, Job{Name: inflect.Plural(g.Key), Format: FormatICS, Sessions: g.Sessions})
		}
		all := All(groups)
		jobs = append(jobs,
			Job{Name: AllSessionsName, Format: FormatICS, Sessions: all},
			Job{Name: AllSessionsName, Format: FormatCSV, Columns: opts.Columns, Sessions: interests},
		)
	}
	if len(reserved) > 0 {
		jobs = append(jobs, Job{Name: ReservedName, Format: FormatICS, Sessions: reserved})
	}
	return jobs
}

var nonLetters = regexp.MustCompile(`[^a-z]+`)

// NormalizeFilename lower-cases name and replaces the first run of
// non-letters with a hyphen. Later runs are left alone.
func NormalizeFilename(name string) string {
	s := strings.ToLower(name)
	loc := nonLetters.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + "-" + s[loc[1]:]
}
