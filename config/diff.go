package config

import (
	"encoding/json"
	"reflect"
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// A Diff is the difference between two configs, left and right, where left is usually old and
// right is new.
type Diff struct {
	Left, Right Config
	// Changed lists the JSON names of fields that differ, sorted.
	Changed    []string
	PrettyDiff string
}

// DiffConfigs returns the difference between the two given configs from left to right.
func DiffConfigs(left, right Config) (*Diff, error) {
	diff := &Diff{Left: left, Right: right}

	lv := reflect.ValueOf(left)
	rv := reflect.ValueOf(right)
	names := FieldNames()
	for i, name := range names {
		if lv.Field(i).Interface() != rv.Field(i).Interface() {
			diff.Changed = append(diff.Changed, name)
		}
	}
	sort.Strings(diff.Changed)

	if len(diff.Changed) == 0 {
		return diff, nil
	}
	pretty, err := prettyDiff(left, right)
	if err != nil {
		return nil, err
	}
	diff.PrettyDiff = pretty
	return diff, nil
}

// Equal reports whether nothing changed.
func (diff *Diff) Equal() bool {
	return len(diff.Changed) == 0
}

// String returns a pretty version of the diff.
func (diff *Diff) String() string {
	return diff.PrettyDiff
}

func prettyDiff(left, right Config) (string, error) {
	leftMd, err := json.MarshalIndent(left, "", " ")
	if err != nil {
		return "", err
	}
	rightMd, err := json.MarshalIndent(right, "", " ")
	if err != nil {
		return "", err
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(leftMd), string(rightMd), true)
	filteredDiffs := make([]diffmatchpatch.Diff, 0, len(diffs))
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		filteredDiffs = append(filteredDiffs, d)
	}
	return dmp.DiffPrettyText(filteredDiffs), nil
}
