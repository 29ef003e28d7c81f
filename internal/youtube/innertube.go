package youtube

// Shapes of the JSON embedded in the watch page and of the srv3 timedtext
// document.  Only the fields read by Client are declared.

const playerResponseMarker = "ytInitialPlayerResponse = "

type playerResponse struct {
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails *struct {
		VideoID string `json:"videoId"`
		Title   string `json:"title"`
	} `json:"videoDetails"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// srv3Doc is the timedtext "format 3" document: <timedtext><body><p t d>.
// Auto-generated tracks split a paragraph into word-level <s> children.
type srv3Doc struct {
	Body struct {
		Paras []srv3Para `xml:"p"`
	} `xml:"body"`
}

type srv3Para struct {
	T    int64  `xml:"t,attr"`
	D    int64  `xml:"d,attr"`
	Text string `xml:",chardata"`
	Segs []struct {
		Text string `xml:",chardata"`
	} `xml:"s"`
}

// extractJSON returns the JSON object starting at b[0] by tracking brace
// depth outside string literals.  nil means the object never closed.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, esc := false, false
	for i, c := range b {
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
