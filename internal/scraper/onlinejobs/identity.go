package onlinejobs

import (
	"fmt"
	"regexp"

	"github.com/cespare/xxhash/v2"
)

// idMatchers are tried in order; the first numeric capture wins.
var idMatchers = []*regexp.Regexp{
	regexp.MustCompile(`/job/[^/?#]*?-(\d+)(?:[/?#]|$)`),
	regexp.MustCompile(`/job/(\d+)(?:[/?#]|$)`),
	regexp.MustCompile(`[?&](?:jobId|job_id|id)=(\d+)(?:&|#|$)`),
	regexp.MustCompile(`/(\d+)/?(?:[?#]|$)`),
}

// JobID derives the stable identifier of a posting from its URL. OnlineJobs
// embeds a numeric ID in the slug; URLs without one fall back to a hash of the
// whole string, so the same URL always yields the same ID.
func JobID(rawURL string) string {
	for _, re := range idMatchers {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return fmt.Sprintf("u%016x", xxhash.Sum64String(rawURL))
}
