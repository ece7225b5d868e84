package services

import "regexp"

// Known throwaway-mailbox providers. Not exhaustive; extend as new providers
// show up in flagged signups.
var disposableDomains = map[string]struct{}{
	"10minutemail.com":  {},
	"10minutemail.net":  {},
	"20minutemail.com":  {},
	"33mail.com":        {},
	"anonbox.net":       {},
	"burnermail.io":     {},
	"dispostable.com":   {},
	"emailondeck.com":   {},
	"fakeinbox.com":     {},
	"getairmail.com":    {},
	"getnada.com":       {},
	"guerrillamail.com": {},
	"guerrillamail.net": {},
	"inboxkitten.com":   {},
	"mailcatch.com":     {},
	"maildrop.cc":       {},
	"mailinator.com":    {},
	"mailnesia.com":     {},
	"mailsac.com":       {},
	"mintemail.com":     {},
	"mohmal.com":        {},
	"mytemp.email":      {},
	"sharklasers.com":   {},
	"spamgourmet.com":   {},
	"temp-mail.org":     {},
	"tempail.com":       {},
	"tempmail.com":      {},
	"tempmail.net":      {},
	"throwaway.email":   {},
	"trashmail.com":     {},
	"trashmail.net":     {},
	"yopmail.com":       {},
	"yopmail.fr":        {},
}

// Heuristics for spam-like local parts. These are tuning knobs, not
// invariants; keep them conservative so real addresses never match.
// Repeated-character runs (aaaaa, 11111) are caught by hasRepeatedRun;
// RE2 has no backreferences.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[0-9]+$`),                 // pure number sequences
	regexp.MustCompile(`^(test|fake|spam|asdf)`),  // throwaway prefixes
	regexp.MustCompile(`^[a-z]{1,2}[0-9]{6,}$`),   // a1234567-style machine names
	regexp.MustCompile(`^(qwerty|asdfgh|zxcvbn)`), // keyboard mash
}

// hasRepeatedRun reports whether s contains a run of five or more identical
// bytes.
func hasRepeatedRun(s string) bool {
	run := 1
	for i := 1; i < len(s); i++ {
		if s[i] != s[i-1] {
			run = 1
			continue
		}
		run++
		if run >= 5 {
			return true
		}
	}
	return false
}
