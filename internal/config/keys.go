package config

import (
	"strings"

	"github.com/beevik/prefixtree/v2"
)

// Key is a project file key.
type Key string

// Project file keys.
const (
	BinaryFile      Key = "BINARY_FILE"
	BinaryStart     Key = "BINARY_START"
	BinaryEnd       Key = "BINARY_END"
	OutputFile      Key = "OUTPUT_FILE"
	ListFile        Key = "LIST_FILE"
	LogFile         Key = "LOG_FILE"
	DBAlign         Key = "DB_ALIGN"
	TabSize         Key = "TAB_SIZE"
	CodeLabelPrefix Key = "CODE_LABEL_PREFIX"
	DataLabelPrefix Key = "DATA_LABEL_PREFIX"
	HexFormat       Key = "HEX_FORMAT"
	StartAddress    Key = "START_ADDRESS"
	EndAddress      Key = "END_ADDRESS"
	StartOff        Key = "START_OFF"
	Label           Key = "LABEL"
	Equ             Key = "EQU"
	Undocumented    Key = "UNDOCUMENTED"
	HexComments     Key = "HEX_COMMENTS"
)

// Keys lists all known keys in the order they are documented.
var Keys = []Key{
	BinaryFile, BinaryStart, BinaryEnd,
	OutputFile, ListFile, LogFile,
	DBAlign, TabSize, CodeLabelPrefix, DataLabelPrefix, HexFormat,
	StartAddress, EndAddress, StartOff, Label, Equ,
	Undocumented, HexComments,
}

var keyTree = newKeyTree()

func newKeyTree() *prefixtree.Tree[Key] {
	tree := prefixtree.New[Key]()
	for _, key := range Keys {
		tree.Add(strings.ToLower(string(key)), key)
	}
	return tree
}

// LookupKey resolves a case insensitive, possibly abbreviated key name.
func LookupKey(name string) (Key, error) {
	return keyTree.FindValue(strings.ToLower(strings.TrimSpace(name)))
}
