package warcraftlogs

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidReference = errors.New("invalid report reference")

var reportCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{8,40}$`)

// ParseReportReference accepts a bare report code or a report URL such as
// https://www.warcraftlogs.com/reports/AbCd1234EfGh5678#fight=3 and returns the code.
func ParseReportReference(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidReference
	}
	if reportCodePattern.MatchString(ref) {
		return ref, nil
	}

	if !strings.Contains(ref, "://") {
		ref = "https://" + ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", ErrInvalidReference
	}
	host := strings.ToLower(u.Hostname())
	if host != "warcraftlogs.com" && !strings.HasSuffix(host, ".warcraftlogs.com") {
		return "", ErrInvalidReference
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "reports" && reportCodePattern.MatchString(segments[i+1]) {
			return segments[i+1], nil
		}
	}
	return "", ErrInvalidReference
}
