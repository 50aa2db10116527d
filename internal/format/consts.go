// Package format houses low-level decoders for the MS-PST on-disk layout:
// the fixed-size header, block trailers, node/block ids, and the heap/BTH/
// PC/TC record shapes built on top of NDB data streams. It stays independent
// of the higher-level ndb/ltp/msgstore packages so the byte-level rules can
// be tested in isolation.
package format

// Variant distinguishes the two on-disk PST/OST layouts. Every
// variant-sensitive structure (BID/NID width, block trailer size, page
// entry width) is sized from this single value.
type Variant int

const (
	// VariantANSI is the pre-2003 32-bit-offset layout (wVer 14/15).
	VariantANSI Variant = iota
	// VariantUnicode is the 2003+ 64-bit-offset layout (wVer 23/37).
	VariantUnicode
)

var (
	// HeaderMagic is the four-byte signature at the start of every PST/OST file.
	HeaderMagic = []byte{'!', 'B', 'D', 'N'}
	// HeaderMagicClient is the two-byte "SM" client signature following dwCRCPartial.
	HeaderMagicClient = []byte{'S', 'M'}
)

// Header field offsets, common to both variants for the leading fields.
const (
	HeaderMagicOffset        = 0x00
	HeaderMagicSize          = 4
	HeaderCRCPartialOffset   = 0x04
	HeaderMagicClientOffset  = 0x08
	HeaderMagicClientSize    = 2
	HeaderVersionOffset      = 0x0A
	HeaderVersionClientOff   = 0x0C
	HeaderPlatformCreateOff  = 0x0E
	HeaderPlatformAccessOff  = 0x0F
	// HeaderCRCPartialRegionEnd is the exclusive end of the byte range
	// dwCRCPartial covers: everything from wMagicClient up to (but not
	// including) the variant-specific ROOT structure fields.
	HeaderCRCPartialRegionEnd = 0x18
	HeaderSize64ANSIRootOff  = 0x18 // start of the ROOT structure, ANSI layout
	HeaderSize64UniRootOff   = 0x18 // start of the ROOT structure, Unicode layout (wider fields)
	HeaderTotalSizeANSI      = 512
	HeaderTotalSizeUnicode   = 564
	// HeaderCryptMethodOffset is the one-byte bCryptMethod field, common to
	// both variants, sitting just past the ROOT structure's fixed fields.
	HeaderCryptMethodOffset = 0x1CB
)

// CryptMethod values for the header's bCryptMethod byte.
const (
	CryptMethodNone    byte = 0x00
	CryptMethodPermute byte = 0x01
	CryptMethodCyclic  byte = 0x02
)

// Recognized wVer values.
const (
	VerANSI2000    = 14
	VerANSI2002    = 15
	VerUnicode2003 = 23
	VerUnicode2013 = 37
)

// ROOT structure field offsets, relative to the start of the ROOT block
// (immediately after the fixed leading header fields). Layouts differ in
// field width between variants, so each offset is given once for
// VariantUnicode and once for VariantANSI.
const (
	RootFileEOFOffsetUnicode     = 0x0C
	RootNBTRootOffsetUnicode     = 0x20
	RootBBTRootOffsetUnicode     = 0x30
	RootFileEOFOffsetANSI        = 0x08
	RootNBTRootOffsetANSI        = 0x14
	RootBBTRootOffsetANSI        = 0x1C
)

// Block trailer sizes. The trailer sits at the end of every page/block,
// aligned to the end of the block's allocation unit.
const (
	TrailerSizeANSI     = 12
	TrailerSizeUnicode  = 16
	PageOrBlockSizeUnit = 512
)

// NID (node id) layout: low 5 bits are the node type, remaining 27 bits are
// the index.
const (
	NIDTypeMask  = 0x1F
	NIDIndexBits = 5
)

// NodeType enumerates the low 5 bits of a NID.
type NodeType uint32

const (
	NIDTypeHMTPage           NodeType = 0x00
	NIDTypeInternal          NodeType = 0x01
	NIDTypeNormalFolder      NodeType = 0x02
	NIDTypeSearchFolder      NodeType = 0x03
	NIDTypeNormalMessage     NodeType = 0x04
	NIDTypeAttachment        NodeType = 0x05
	NIDTypeSearchUpdateQueue NodeType = 0x06
	NIDTypeSearchCriteria    NodeType = 0x07
	NIDTypeAssocMessage      NodeType = 0x08
	NIDTypeContentsTable     NodeType = 0x0B
	NIDTypeAssocContTable    NodeType = 0x0C
	NIDTypeSearchContTable   NodeType = 0x0D
	NIDTypeHierarchyTable    NodeType = 0x0E
	NIDTypeAttachTable       NodeType = 0x0F
	NIDTypeRecipientTable    NodeType = 0x10
	NIDTypeSearchTableIndex  NodeType = 0x11
	NIDTypeLTP               NodeType = 0x1F
)

// Special (well-known) NID values, per MS-PST 2.4.1.
const (
	NIDMessageStore     uint32 = 0x21
	NIDNameToIDMap      uint32 = 0x61
	NIDNormalFolderRoot uint32 = 0x122 // root folder NID
	NIDSearchFolderRoot uint32 = 0x2E2
	NIDGlobalProfile    uint32 = 0x9E2
	NIDSearchMgmtQueue  uint32 = 0xF01
	NIDSearchActivity   uint32 = 0xF11
)

// Property tags used by the message-store binding.
const (
	PropTagPasswordCRC          uint32 = 0x67FF0003
	PropTagDisplayName          uint32 = 0x3001001F
	PropTagContentCount         uint32 = 0x36020003
	PropTagContentUnreadCount   uint32 = 0x36030003
	PropTagSubfolders           uint32 = 0x360A000B
	PropTagSubject              uint32 = 0x0037001F
	PropTagSenderName           uint32 = 0x0C1A001F
	PropTagSentRepresentingName uint32 = 0x0042001F
	PropTagMessageDeliveryTime  uint32 = 0x0E060040
	PropTagClientSubmitTime     uint32 = 0x00390040
	PropTagBodyPlain            uint32 = 0x1000001F
	PropTagBodyHTML             uint32 = 0x10130102
	PropTagRTFCompressed        uint32 = 0x10090102
	PropTagAttachFilename       uint32 = 0x3704001F
	PropTagAttachLongFilename   uint32 = 0x3707001F
	PropTagAttachMimeTag        uint32 = 0x370E001F
	PropTagAttachSize           uint32 = 0x0E200003
	PropTagAttachDataBinary     uint32 = 0x37010102
	PropTagAttachDataObject     uint32 = 0x37010102 // object storage flag is carried by property type 0x000D
	PropTagAttachMethod         uint32 = 0x37050003
	PropTagFolderType           uint32 = 0x36010003
	PropTagConversationTopic    uint32 = 0x0070001F
	PropTagConversationIndex    uint32 = 0x00710102
	PropTagRecipientType        uint32 = 0x0C150003
	PropTagRecipientEmailAddr   uint32 = 0x3003001F
	PropTagRecipientDisplayName uint32 = 0x5FF6001F
	PropTagMessageClass         uint32 = 0x001A001F
	PropTagHasAttachments       uint32 = 0x0E1B000B

	// Named-property map streams within NID_NAME_TO_ID_MAP's own PC.
	PropTagNameidStreamGuid   uint32 = 0x00020102
	PropTagNameidStreamEntry  uint32 = 0x00030102
	PropTagNameidStreamString uint32 = 0x00040102
)

// FolderType values for PropTagFolderType.
const (
	FolderTypeRoot   = 0
	FolderTypeGeneric = 1
	FolderTypeSearch = 2
)

// Attachment method values for PropTagAttachMethod.
const (
	AttachByValue      = 1
	AttachByReference  = 2
	AttachEmbeddedMsg  = 5
	AttachOLE          = 6
)

// Sanity ceilings applied while walking untrusted, attacker-controllable
// counts (mirrors the defensive style of the pack's registry-hive reader).
const (
	MaxTreeEntries   = 1 << 20
	MaxBlockSize     = 8 << 20
	MaxLogicalStream = 2 << 30
)
