package gerrit

import (
	"bufio"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
)

// FlexInt decodes a JSON value that Gerrit emits either as a number or as a
// quoted string, depending on server version and field ("value" is always a
// string, "number" varies).
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

// LooseBool is true only when the upstream value is literally true (or the
// string "true"). Anything else, including absence, decodes as false.
type LooseBool bool

func (b *LooseBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*b = s == "true"
	return nil
}

// Account identifies a Gerrit user in query output.
type Account struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Approval is one reviewer's score on one label for the current patchset.
type Approval struct {
	Type  string  `json:"type"`
	Value FlexInt `json:"value"`
}

// PatchSet describes the current patchset attached to a queried change.
type PatchSet struct {
	Number         FlexInt    `json:"number"`
	Revision       string     `json:"revision"`
	Ref            string     `json:"ref"`
	IsDraft        LooseBool  `json:"isDraft"`
	Approvals      []Approval `json:"approvals"`
	SizeInsertions int        `json:"sizeInsertions"`
	SizeDeletions  int        `json:"sizeDeletions"`
}

// Review is one change/current-patchset pairing as returned by
// `gerrit query --format=JSON --current-patch-set`.
type Review struct {
	Project         string    `json:"project"`
	Branch          string    `json:"branch"`
	ID              string    `json:"id"`
	Number          FlexInt   `json:"number"`
	Subject         string    `json:"subject"`
	Owner           Account   `json:"owner"`
	URL             string    `json:"url"`
	LastUpdated     int64     `json:"lastUpdated"`
	Open            bool      `json:"open"`
	Status          string    `json:"status"`
	CurrentPatchSet PatchSet  `json:"currentPatchSet"`
}

// OwnerName returns the display name of the change owner, falling back to
// the username when the account has no full name.
func (r *Review) OwnerName() string {
	if r.Owner.Name != "" {
		return r.Owner.Name
	}
	return r.Owner.Username
}

// ParseReviews decodes the newline-delimited JSON stream emitted by the
// query endpoint. Objects that do not carry a change number, subject, and
// owner are dropped: Gerrit terminates every result set with a stats object
// ({"type":"stats","rowCount":N,...}) that must not become a row. Malformed
// lines are skipped the same way. Source ordering is preserved.
func ParseReviews(r io.Reader) []Review {
	var reviews []Review

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var rev Review
		if err := json.Unmarshal([]byte(line), &rev); err != nil {
			continue
		}
		if rev.Number == 0 || rev.Subject == "" || rev.OwnerName() == "" {
			continue
		}
		reviews = append(reviews, rev)
	}
	return reviews
}

// ParseProjectList decodes `gerrit ls-projects --format JSON` output, which
// is a single JSON object keyed by project name.
func ParseProjectList(data []byte) ([]string, error) {
	var m map[string]struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
