package msgstore

import (
	"io"
	"sync/atomic"

	"github.com/outlookvault/pstkit/internal/format"
	"github.com/outlookvault/pstkit/internal/mmfile"
	"github.com/outlookvault/pstkit/internal/pkgerr"
	"github.com/outlookvault/pstkit/internal/telemetry"
	"github.com/outlookvault/pstkit/ltp"
	"github.com/outlookvault/pstkit/ndb"
)

// OpenOptions configures Open/OpenReader.
type OpenOptions struct {
	// Password unlocks a store gated by PidTagPasswordCRC. Leave empty for
	// an unprotected store; if the store is protected and this is empty,
	// Open fails with pkgerr.PasswordRequired.
	Password string
	// CacheEntries overrides the NDB block cache's total capacity. 0 uses
	// the package default.
	CacheEntries int
	// CollectDiagnostics logs one Debug-level "message store opened" record
	// through internal/telemetry when the File is opened. It has no visible
	// effect unless the embedding program has also called telemetry.Init.
	CollectDiagnostics bool
}

// File is an opened PST/OST mailbox: a validated NDB header plus the
// root folder of its message-store hierarchy.
type File struct {
	ndbFile    *ndb.File
	namedProps *namedPropertyMap
	closed     atomic.Bool
}

// Open memory-maps path and opens it as a PST/OST file.
func Open(path string, opts OpenOptions) (*File, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.Io, "open file", err)
	}
	return openSource(ndb.NewMemSource(data, cleanup), opts)
}

// OpenReader opens a PST/OST from an arbitrary read-only byte source of
// the given total size, for callers that already have the bytes in hand
// (an in-memory buffer, a network-backed reader) rather than a path.
func OpenReader(r io.ReaderAt, size int64, opts OpenOptions) (*File, error) {
	return openSource(ndb.NewReaderAtSource(r, size), opts)
}

func openSource(src ndb.Source, opts OpenOptions) (*File, error) {
	nf, err := ndb.Open(src, ndb.OpenOptions{CacheEntries: opts.CacheEntries})
	if err != nil {
		src.Close()
		return nil, err
	}
	f := &File{ndbFile: nf}
	if opts.CollectDiagnostics {
		telemetry.Logger.Debug("message store opened", "variant", nf.Header.Variant)
	}

	if err := f.checkPassword(opts.Password); err != nil {
		nf.Close()
		return nil, err
	}
	if np, err := loadNamedProperties(f); err == nil {
		f.namedProps = np
	} else {
		telemetry.Logger.Warn("named property map unavailable", "error", err)
	}
	return f, nil
}

// Close releases the underlying byte source (unmapping a memory-mapped
// file, or releasing whatever OpenReader's caller handed in). Every
// subsequent call on f fails with pkgerr.Disposed.
func (f *File) Close() error {
	f.closed.Store(true)
	return f.ndbFile.Close()
}

// checkOpen returns pkgerr.Disposed once Close has run.
func (f *File) checkOpen() error {
	if f.closed.Load() {
		return pkgerr.New(pkgerr.Disposed, "message store is closed")
	}
	return nil
}

// props loads the PropertyContext for nid, resolving its sub-node root
// from the Node BTree entry along the way.
func (f *File) props(nid format.NID) (PropertySet, error) {
	if err := f.checkOpen(); err != nil {
		return PropertySet{}, err
	}
	node, err := f.ndbFile.LookupNode(nid)
	if err != nil {
		return PropertySet{}, err
	}
	if node.DataBID == 0 {
		return PropertySet{named: f.namedProps}, nil
	}
	stream, err := f.ndbFile.ReadDataStream(node.DataBID)
	if err != nil {
		return PropertySet{}, err
	}
	pc, err := ltp.OpenPropertyContext(f.ndbFile, stream, node.SubBID)
	if err != nil {
		return PropertySet{}, err
	}
	return PropertySet{pc: pc, named: f.namedProps}, nil
}

// table loads the TableContext rooted at nid.
func (f *File) table(nid format.NID) (*ltp.TableContext, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}
	node, err := f.ndbFile.LookupNode(nid)
	if err != nil {
		return nil, err
	}
	stream, err := f.ndbFile.ReadDataStream(node.DataBID)
	if err != nil {
		return nil, err
	}
	return ltp.OpenTableContext(f.ndbFile, stream, node.SubBID)
}

// RootFolder returns the top of the folder hierarchy.
func (f *File) RootFolder() (Folder, error) {
	root, err := f.folder(format.NID(f.ndbFile.Header.RootFolderNID()))
	if err != nil {
		return Folder{}, err
	}
	root.path = "/"
	return root, nil
}

func (f *File) folder(nid format.NID) (Folder, error) {
	props, err := f.props(nid)
	if err != nil {
		return Folder{}, err
	}
	return Folder{file: f, nid: nid, PropertySet: props}, nil
}

func (f *File) attachment(nid format.NID) (Attachment, error) {
	props, err := f.props(nid)
	if err != nil {
		return Attachment{}, err
	}
	return Attachment{file: f, nid: nid, PropertySet: props}, nil
}

func (f *File) message(nid format.NID) (Message, error) {
	props, err := f.props(nid)
	if err != nil {
		return Message{}, err
	}
	return Message{file: f, nid: nid, PropertySet: props}, nil
}
