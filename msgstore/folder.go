package msgstore

import (
	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/telemetry"
)

// Folder is one node of the message-store hierarchy: a PropertySet plus
// the tables (hierarchy, contents, associated contents) that list its
// children.
type Folder struct {
	PropertySet
	file *File
	nid  format.NID
	path string
}

// DisplayName returns PidTagDisplayName.
func (fo Folder) DisplayName() string { return fo.String(format.PropTagDisplayName) }

// ContentCount returns PidTagContentCount.
func (fo Folder) ContentCount() int64 { return fo.Int(format.PropTagContentCount) }

// UnreadCount returns PidTagContentUnreadCount.
func (fo Folder) UnreadCount() int64 { return fo.Int(format.PropTagContentUnreadCount) }

// Path returns this folder's "/"-separated display-name path from the
// root, e.g. "/Top of Information Store/Inbox". The root folder's path is
// "/".
func (fo Folder) Path() string { return fo.path }

// IsSearchFolder reports whether PidTagFolderType marks this a search
// folder rather than a genuine (generic or root) folder.
func (fo Folder) IsSearchFolder() bool {
	return fo.Int(format.PropTagFolderType) == format.FolderTypeSearch
}

// Subfolders returns this folder's immediate children, via its hierarchy
// table.
func (fo Folder) Subfolders() ([]Folder, error) {
	tc, err := fo.file.table(fo.nid.WithType(format.NIDTypeHierarchyTable))
	if err != nil {
		return nil, err
	}
	ids, err := tc.RowIDs()
	if err != nil {
		return nil, err
	}
	out := make([]Folder, 0, len(ids))
	for _, id := range ids {
		child, err := fo.file.folder(format.NID(id))
		if err != nil {
			telemetry.Logger.Warn("skipping unreadable subfolder", "nid", id, "error", err)
			continue
		}
		child.path = fo.childPath(child.DisplayName())
		out = append(out, child)
	}
	return out, nil
}

// childPath builds a child's path from this folder's own path and the
// child's display name.
func (fo Folder) childPath(name string) string {
	if fo.path == "/" {
		return "/" + name
	}
	return fo.path + "/" + name
}

// Messages returns this folder's messages, via its contents table.
func (fo Folder) Messages() ([]Message, error) {
	tc, err := fo.file.table(fo.nid.WithType(format.NIDTypeContentsTable))
	if err != nil {
		return nil, err
	}
	ids, err := tc.RowIDs()
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(ids))
	for _, id := range ids {
		msg, err := fo.file.message(format.NID(id))
		if err != nil {
			telemetry.Logger.Warn("skipping unreadable message", "nid", id, "error", err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// AssociatedMessages returns this folder's folder-associated information
// (FAI) items, via its associated contents table. FAI items carry
// per-folder configuration (views, rules, forms) rather than mail the
// user would see in a message list.
func (fo Folder) AssociatedMessages() ([]Message, error) {
	tc, err := fo.file.table(fo.nid.WithType(format.NIDTypeAssocContTable))
	if err != nil {
		return nil, err
	}
	ids, err := tc.RowIDs()
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(ids))
	for _, id := range ids {
		msg, err := fo.file.message(format.NID(id))
		if err != nil {
			telemetry.Logger.Warn("skipping unreadable associated message", "nid", id, "error", err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}
