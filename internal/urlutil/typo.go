package urlutil

import "strings"

// TLDs that show up when a sentence-ending word is mistaken for a domain
// ("join us this friday.night"). A bare host ending in one of these is very
// likely not a link at all.
var errorTLDs = setOf(
	"able", "africa", "ag", "am", "amazon", "android", "ao", "apple",
	"audio", "author", "aw", "ba", "baby", "barcelona", "baseball",
	"bayern", "bb", "beauty", "berlin", "bible", "bio", "black", "blog",
	"blue", "bmw", "bn", "bo", "bom", "bond", "boo", "box", "bs", "build",
	"buy", "buzz", "by", "cab", "car", "cash", "ceo", "cfa", "chat", "ck",
	"click", "clothing", "contact", "cr", "credit", "cv", "cz", "data",
	"day", "delta", "design", "dj", "dm", "dot", "dupont", "dvr", "earth",
	"eco", "er", "et", "eus", "family", "ferrero", "film", "fk", "football",
	"fox", "ga", "gallery", "gallup", "game", "gay", "gb", "ge", "gh",
	"gle", "global", "gm", "google", "gp", "group", "gu", "hair",
	"helsinki", "hockey", "house", "ice", "il", "im", "inc", "ing", "ink",
	"iq", "je", "jo", "kh", "ki", "kim", "km", "kn", "ky", "la", "lat",
	"lifestyle", "like", "lincoln", "lk", "lol", "love", "ls", "ltd",
	"luxe", "madrid", "maison", "man", "map", "market", "mc", "med",
	"meme", "men", "mg", "mil", "ml", "mm", "mma", "mo", "moi", "mov",
	"mr", "ms", "mt", "mtn", "mu", "mw", "na", "name", "ne", "new", "ni",
	"no", "norton", "now", "np", "nu", "off", "office", "ooo", "open",
	"osaka", "pa", "pet", "pharmacy", "phone", "photos", "pics",
	"pictures", "pin", "ping", "pk", "place", "play", "plus", "post",
	"pr", "prod", "protection", "ps", "pub", "py", "quebec", "re",
	"read", "red", "ren", "rent", "rip", "ro", "rocher", "rugby", "sa",
	"sakura", "sale", "science", "ses", "sexy", "sh", "shell", "sj",
	"skin", "sm", "smile",
	"so", "social", "sport", "sr", "ss", "star", "style", "surgery",
	"suzuki", "sx", "sy", "systems", "tattoo", "tel", "tennis", "tiffany",
	"total", "tours", "va", "ve", "vi", "video", "vision", "vote", "vu",
	"website", "wow", "xin", "xxx", "ye", "you", "youtube", "zara",
	"zero", "zip", "zw",
)

// French inclusive-writing suffixes ("auteur.rice.s") that make a token look
// like a domain with a TLD.
var errorInclusiveSuffixes = []string{
	"é.es", "eux.se", "s.es", "eur.se", "eu.r.se", "ant.es", "eu.x.se",
	"eu.se", "un.es", ".e.es", "eux.ses", "r.es", "ois.es", "t.es",
	"l.es", "i.es", "n.es", "u.es",
}

// IsTypoURL reports whether link looks like prose mistaken for a URL rather
// than an actual link: a bare host (no real path, no query, no ".co.") whose
// apparent TLD is a known sentence-ending word or an inclusive-writing
// suffix.
func IsTypoURL(link string) bool {
	bare := StripProtocol(link)

	slashes := strings.Count(bare, "/")
	if slashes > 1 {
		return false
	}
	if slashes == 1 && !strings.HasSuffix(bare, "/") {
		return false
	}

	if strings.Contains(bare, "?") {
		return false
	}

	if strings.Contains(bare, ".co.") {
		return false
	}

	link = strings.TrimRight(link, "/")
	dot := strings.LastIndexByte(link, '.')
	if dot < 0 {
		return false
	}

	if _, ok := errorTLDs[link[dot+1:]]; ok {
		return true
	}
	return isInclusiveLanguage(link)
}

func isInclusiveLanguage(link string) bool {
	for _, suffix := range errorInclusiveSuffixes {
		if strings.HasSuffix(link, suffix) {
			return true
		}
	}
	return false
}
