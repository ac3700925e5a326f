package shipping

import (
	"strings"

	"github.com/spedigo-next/internal/constants"
)

// Intent modes.
const (
	ModeNone        = "none"
	ModeCreateLabel = "create_label"
	ModeCustomsOnly = "customs_only"
)

// Intent is the action derived from an order's tag set. It is computed fresh
// per event and never persisted.
type Intent struct {
	Mode            string
	SenderCode      string
	AccountType     string
	SkipAutoCustoms bool
	Reason          string
}

// createSuffixes in match order: longer suffixes first so "-CREATE" does not
// swallow its variants.
var createSuffixes = []struct {
	suffix          string
	accountType     string
	skipAutoCustoms bool
}{
	{constants.TagSuffixCreateDDUNoDog, constants.AccountTypeDDU, true},
	{constants.TagSuffixCreateDDU, constants.AccountTypeDDU, false},
	{constants.TagSuffixCreateNoDog, constants.AccountTypeDDP, true},
	{constants.TagSuffixCreate, constants.AccountTypeDDP, false},
}

// SplitTags normalizes a raw comma-separated tag string.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.ToUpper(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// HasLabelOKTag reports whether a completion marker is present.
func HasLabelOKTag(rawTags string) bool {
	for _, tag := range SplitTags(rawTags) {
		if strings.HasPrefix(tag, constants.TagPrefixLabelOK) {
			return true
		}
	}
	return false
}

// ParseIntent derives the requested action from the order's raw tag string.
// knownSender filters sender codes; tags whose prefix does not resolve to a
// configured profile are skipped and scanning continues.
//
// Precedence: a LABEL-OK-* tag short-circuits everything; otherwise the
// first *-DOG tag wins; otherwise the first tag in array order matching any
// CREATE-family suffix wins, with its specific suffix fixing the account
// type and the skip-customs flag.
func ParseIntent(rawTags string, knownSender func(code string) bool) Intent {
	if knownSender == nil {
		knownSender = func(string) bool { return false }
	}
	tags := SplitTags(rawTags)

	for _, tag := range tags {
		if strings.HasPrefix(tag, constants.TagPrefixLabelOK) {
			return Intent{Mode: ModeNone, Reason: "label-ok"}
		}
	}

	for _, tag := range tags {
		if !strings.HasSuffix(tag, constants.TagSuffixCustomsOnly) {
			continue
		}
		code := strings.TrimSuffix(tag, constants.TagSuffixCustomsOnly)
		if code == "" || !knownSender(code) {
			continue
		}
		return Intent{Mode: ModeCustomsOnly, SenderCode: code}
	}

	for _, tag := range tags {
		for _, candidate := range createSuffixes {
			if !strings.HasSuffix(tag, candidate.suffix) {
				continue
			}
			code := strings.TrimSuffix(tag, candidate.suffix)
			if code == "" || !knownSender(code) {
				break
			}
			return Intent{
				Mode:            ModeCreateLabel,
				SenderCode:      code,
				AccountType:     candidate.accountType,
				SkipAutoCustoms: candidate.skipAutoCustoms,
			}
		}
	}

	return Intent{Mode: ModeNone, Reason: "no-valid-create-tag"}
}

// LabelOKTag builds the completion marker for a sender code.
func LabelOKTag(senderCode string) string {
	return constants.TagPrefixLabelOK + strings.ToUpper(strings.TrimSpace(senderCode))
}

// CreateTag reconstructs the create-family tag an intent was parsed from.
func CreateTag(intent Intent) string {
	code := strings.ToUpper(strings.TrimSpace(intent.SenderCode))
	for _, candidate := range createSuffixes {
		if candidate.accountType == intent.AccountType && candidate.skipAutoCustoms == intent.SkipAutoCustoms {
			return code + candidate.suffix
		}
	}
	return code + constants.TagSuffixCreate
}

// SwapLabelOKTag replaces the honored create tag with the completion marker,
// preserving every other tag as delivered.
func SwapLabelOKTag(rawTags string, intent Intent) string {
	created := CreateTag(intent)
	parts := strings.Split(rawTags, ",")
	out := make([]string, 0, len(parts)+1)
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" || strings.ToUpper(tag) == created {
			continue
		}
		out = append(out, tag)
	}
	out = append(out, LabelOKTag(intent.SenderCode))
	return strings.Join(out, ", ")
}

// SuggestedTag proposes the tag an operator should have used when the
// account type does not fit the destination.
func SuggestedTag(senderCode, accountType string, skipAutoCustoms bool) string {
	code := strings.ToUpper(strings.TrimSpace(senderCode))
	switch accountType {
	case constants.AccountTypeDDP:
		// DDP was requested for a destination that only allows DDU.
		if skipAutoCustoms {
			return code + constants.TagSuffixCreateDDUNoDog
		}
		return code + constants.TagSuffixCreateDDU
	default:
		// DDU was requested for an auto-eligible destination.
		if skipAutoCustoms {
			return code + constants.TagSuffixCreateNoDog
		}
		return code + constants.TagSuffixCreate
	}
}
