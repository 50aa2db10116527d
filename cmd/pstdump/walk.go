package main

import (
	"strings"

	"github.com/outlookvault/pstkit/msgstore"
)

// resolveFolder walks a "/"-separated path of display names from the
// store's root folder. An empty path returns the root folder itself.
func resolveFolder(f *msgstore.File, path string) (msgstore.Folder, error) {
	root, err := f.RootFolder()
	if err != nil {
		return msgstore.Folder{}, err
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return root, nil
	}
	cur := root
	for _, name := range strings.Split(path, "/") {
		subs, err := cur.Subfolders()
		if err != nil {
			return msgstore.Folder{}, err
		}
		found := false
		for _, sf := range subs {
			if sf.DisplayName() == name {
				cur = sf
				found = true
				break
			}
		}
		if !found {
			return msgstore.Folder{}, errNotFound(name)
		}
	}
	return cur, nil
}

type errNotFound string

func (e errNotFound) Error() string { return "no such folder: " + string(e) }
