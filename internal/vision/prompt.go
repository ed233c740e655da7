package vision

import (
	"regexp"
	"strings"
)

// Prompt builds the two-stage identification prompt.
func Prompt(knownModels []string) string {
	var b strings.Builder
	b.WriteString("Look only at the attached image. It shows the back of a mobile phone.\n\n")
	b.WriteString("Identify the exact model in TWO STAGES:\n\n")
	b.WriteString("STAGE 1 (catalog): compare the image with the models already in the user's catalog: ")
	b.WriteString(strings.Join(knownModels, ", "))
	b.WriteString(".\nIf the image clearly matches one of them, answer with that exact name.\n\n")
	b.WriteString("STAGE 2 (general): if it matches none of them, identify it from your general knowledge.\n\n")
	b.WriteString("RULES:\n")
	b.WriteString("1. Do not guess. If you cannot tell, answer exactly: " + UnknownReply + "\n")
	b.WriteString("2. When two similar models are possible, pick the one the visible physical differences support.\n")
	b.WriteString("3. Do not mention alternative brands or model ranges.\n")
	b.WriteString("4. Do not explain your reasoning.\n")
	b.WriteString("5. Answer ONLY with the brand and exact model (e.g. iPhone 13 Pro Max).\n")
	b.WriteString("6. Redmi A3X: very large, centred circular camera module at the top.\n")
	b.WriteString("7. Motorola One Hyper: two vertically aligned rear cameras and a round rear fingerprint sensor with the M logo.\n")
	b.WriteString("8. Moto G32: three rear cameras in a rectangular module and a side-mounted fingerprint sensor.\n")
	return b.String()
}

var brandPrefixes = []string{
	"redmi", "xiaomi", "samsung", "motorola", "moto", "iphone", "apple", "realme",
	"oppo", "vivo", "huawei", "honor", "infinix", "tecno", "google", "pixel",
	"nokia", "sony", "lg", "zte", "alcatel", "tcl",
}

var descriptorSuffixes = []string{
	"original", "con marco", "sin marco", "oled", "incell", "tft", "amoled",
	"premium", "calidad", "display", "pantalla", "modulo", "completo",
}

var midDescriptors = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(descriptorSuffixes))
	for _, s := range descriptorSuffixes {
		m[s] = regexp.MustCompile(`(?i) ` + regexp.QuoteMeta(s) + ` `)
	}
	return m
}()

// CleanQuery turns a model reply into a catalog search query by repeatedly
// stripping leading brand names and descriptor words ("oled", "con marco",
// ...) at the end or in the middle. "Samsung Galaxy A03 Core Original Con
// Marco" becomes "Galaxy A03 Core".
func CleanQuery(reply string) string {
	s := strings.TrimSpace(reply)
	for changed := true; changed; {
		changed = false

		for _, brand := range brandPrefixes {
			if strings.EqualFold(s, brand) {
				s, changed = "", true
				break
			}
			if len(s) > len(brand) && strings.EqualFold(s[:len(brand)+1], brand+" ") {
				s, changed = strings.TrimSpace(s[len(brand)+1:]), true
				break
			}
		}
		if changed {
			continue
		}

		for _, suffix := range descriptorSuffixes {
			tail := " " + suffix
			if len(s) >= len(tail) && strings.EqualFold(s[len(s)-len(tail):], tail) {
				s, changed = strings.TrimSpace(s[:len(s)-len(tail)]), true
				break
			}
			if re := midDescriptors[suffix]; re.MatchString(s) {
				s, changed = strings.TrimSpace(re.ReplaceAllString(s, " ")), true
				break
			}
		}
	}
	return s
}
