package domain

import "strings"

func ThreadKeyForGroup(groupID string) string {
	return "group:" + groupID
}

func ThreadKeyForContact(contactID string) string {
	return "dm:" + contactID
}

// ThreadKeyFor returns the stable storage key for the record's thread,
// or "" when the record carries neither a group nor a contact id.
func ThreadKeyFor(c Conversation) string {
	if c.GroupID != "" {
		return ThreadKeyForGroup(c.GroupID)
	}
	if c.ContactID != "" {
		return ThreadKeyForContact(c.ContactID)
	}

	return ""
}

// SameThread reports whether two records describe the same conversation:
// equal non-empty group ids, or two group-less records with equal
// non-empty contact ids.
func SameThread(a, b Conversation) bool {
	if a.GroupID != "" && b.GroupID != "" {
		return a.GroupID == b.GroupID
	}
	if a.GroupID == "" && b.GroupID == "" {
		return a.ContactID != "" && a.ContactID == b.ContactID
	}

	return false
}

func IsDMThreadKey(key string) bool {
	return strings.HasPrefix(strings.TrimSpace(key), "dm:")
}

func ContactIDFromThreadKey(key string) string {
	key = strings.TrimSpace(key)
	if !IsDMThreadKey(key) {
		return ""
	}

	return strings.TrimPrefix(key, "dm:")
}
