package badger

import (
	"strings"
	"unicode"
)

const (
	collectionPrefix = "col"
	entryInfix       = "e"
	metaSuffix       = "meta"
)

func makeMetaKey(collection string) []byte {
	return []byte(collectionPrefix + ":" + collection + ":" + metaSuffix)
}

func makeEntryPrefix(collection string) []byte {
	return []byte(collectionPrefix + ":" + collection + ":" + entryInfix + ":")
}

func makeEntryKey(collection, id string) []byte {
	prefix := makeEntryPrefix(collection)
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id)
	return buf
}

// validCollectionName rejects names that are empty, contain ':' (the key
// separator) or contain whitespace.
func validCollectionName(name string) bool {
	return name != "" && !strings.Contains(name, ":") && strings.IndexFunc(name, unicode.IsSpace) < 0
}
