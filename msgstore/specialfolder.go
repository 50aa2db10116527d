package msgstore

// SpecialFolderKind names one of the well-known folders every mailbox
// carries.
type SpecialFolderKind int

const (
	SpecialFolderInbox SpecialFolderKind = iota
	SpecialFolderOutbox
	SpecialFolderSentItems
	SpecialFolderDeletedItems
)

// specialFolderNames gives the PidTagDisplayName value MS-PST uses for
// each well-known folder in an English-locale store. Real entry-id-based
// resolution (via the message store's PidTagIpmSubTreeEntryId family of
// properties) needs the full entry-id decoder MS-OXCDATA §2.2; lacking
// that, name lookup under the root is the same fallback Outlook itself
// falls back to when a store's entry-id properties are absent or stale.
var specialFolderNames = map[SpecialFolderKind]string{
	SpecialFolderInbox:        "Inbox",
	SpecialFolderOutbox:       "Outbox",
	SpecialFolderSentItems:    "Sent Items",
	SpecialFolderDeletedItems: "Deleted Items",
}

// SpecialFolder finds one of the mailbox's well-known folders by display
// name among the root's immediate children.
func (f *File) SpecialFolder(kind SpecialFolderKind) (Folder, bool, error) {
	name, ok := specialFolderNames[kind]
	if !ok {
		return Folder{}, false, nil
	}
	root, err := f.RootFolder()
	if err != nil {
		return Folder{}, false, err
	}
	children, err := root.Subfolders()
	if err != nil {
		return Folder{}, false, err
	}
	for _, c := range children {
		if c.DisplayName() == name {
			return c, true, nil
		}
	}
	return Folder{}, false, nil
}
