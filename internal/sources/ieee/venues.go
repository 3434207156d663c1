package ieee

import (
	"regexp"
	"strings"

	"github.com/mdaehl/PaperStream/internal/domain"
)

// digitRunRegex matches runs of digits; the last run in a document URL
// is the article number.
var digitRunRegex = regexp.MustCompile(`\d+`)

// publicationTitle maps a venue tag and year to the publication title
// the IEEE Xplore API indexes. IROS changed names over the years, so the
// mapping is year dependent.
func publicationTitle(source, venue string, year int) (string, error) {
	switch strings.ToUpper(venue) {
	case "ICRA":
		if year < 1984 {
			return "", domain.NewUnsupportedVenueError(source, venue, year, "the first ICRA took place in 1984")
		}
		return "IEEE International Conference on Robotics and Automation", nil

	case "IROS":
		if year < 1988 {
			return "", domain.NewUnsupportedVenueError(source, venue, year, "the first IROS took place in 1988")
		}
		switch {
		case year < 1992:
			return "International Workshop on Intelligent Robots", nil
		case year == 1997:
			// The 1997 edition is indexed under a misspelled title.
			return "IEEE/RSJ International Conference on Intelligent Robot and Systems", nil
		default:
			return "IEEE/RSJ International Conference on Intelligent Robots and Systems", nil
		}

	case "TPAMI":
		if year < 1979 {
			return "", domain.NewUnsupportedVenueError(source, venue, year, "the first TPAMI issue appeared in 1979")
		}
		return "IEEE Transactions on Pattern Analysis and Machine Intelligence", nil

	default:
		return "", domain.NewUnsupportedVenueError(source, venue, year, "")
	}
}

// ExtractArticleNumber extracts the article number from an IEEE Xplore
// URL, which is the last run of digits in the path.
func ExtractArticleNumber(paperURL string) string {
	runs := digitRunRegex.FindAllString(paperURL, -1)
	if len(runs) == 0 {
		return ""
	}
	return runs[len(runs)-1]
}
