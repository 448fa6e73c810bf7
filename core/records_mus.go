package core

import (
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// EntryMUS is the MUS serializer for Entry. Timestamps are stored as unix
// microseconds and metadata keys are written in sorted order so equal
// entries encode to equal bytes.
var EntryMUS = entryMUS{}

// CollectionInfoMUS is the MUS serializer for CollectionInfo.
var CollectionInfoMUS = collectionInfoMUS{}

type entryMUS struct{}

func (entryMUS) Marshal(v Entry, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += vectorMarshal(v.Vector, bs[n:])
	n += ord.String.Marshal(v.Document, bs[n:])
	n += metadataMarshal(v.Metadata, bs[n:])
	n += varint.Uint64.Marshal(v.Fingerprint, bs[n:])
	n += timeMarshal(v.InsertedAt, bs[n:])
	n += timeMarshal(v.UpdatedAt, bs[n:])
	return
}

func (entryMUS) Unmarshal(bs []byte) (v Entry, n int, err error) {
	var n1 int
	if v.ID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Vector, n1, err = vectorUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Document, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Metadata, n1, err = metadataUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Fingerprint, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.InsertedAt, n1, err = timeUnmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.UpdatedAt, n1, err = timeUnmarshal(bs[n:])
	n += n1
	return
}

func (entryMUS) Size(v Entry) (size int) {
	size = ord.String.Size(v.ID)
	size += vectorSize(v.Vector)
	size += ord.String.Size(v.Document)
	size += metadataSize(v.Metadata)
	size += varint.Uint64.Size(v.Fingerprint)
	size += timeSize(v.InsertedAt)
	size += timeSize(v.UpdatedAt)
	return
}

type collectionInfoMUS struct{}

func (collectionInfoMUS) Marshal(v CollectionInfo, bs []byte) (n int) {
	n = ord.String.Marshal(v.Name, bs)
	n += ord.String.Marshal(string(v.Metric), bs[n:])
	n += timeMarshal(v.CreatedAt, bs[n:])
	return
}

func (collectionInfoMUS) Unmarshal(bs []byte) (v CollectionInfo, n int, err error) {
	var (
		n1     int
		metric string
	)
	if v.Name, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if metric, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.Metric = Metric(metric)
	v.CreatedAt, n1, err = timeUnmarshal(bs[n:])
	n += n1
	return
}

func (collectionInfoMUS) Size(v CollectionInfo) (size int) {
	return ord.String.Size(v.Name) + ord.String.Size(string(v.Metric)) + timeSize(v.CreatedAt)
}

func vectorMarshal(v []float32, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(v)), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func vectorUnmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	// every float32 takes four bytes
	if length > uint64(len(bs)-n)/4 {
		err = ErrTruncatedData
		return
	}
	if length == 0 {
		return
	}
	v = make([]float32, length)
	var n1 int
	for i := range v {
		if v[i], n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	return
}

func vectorSize(v []float32) (size int) {
	size = varint.Uint64.Size(uint64(len(v)))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return
}

func metadataMarshal(m map[string]string, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(m)), bs)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(m[k], bs[n:])
	}
	return
}

func metadataUnmarshal(bs []byte) (m map[string]string, n int, err error) {
	length, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	// an empty key and value still take one byte each
	if length > uint64(len(bs)-n)/2 {
		err = ErrTruncatedData
		return
	}
	if length == 0 {
		return
	}
	m = make(map[string]string, length)
	var (
		n1   int
		k, v string
	)
	for range length {
		if k, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
		if v, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
		m[k] = v
	}
	return
}

func metadataSize(m map[string]string) (size int) {
	size = varint.Uint64.Size(uint64(len(m)))
	for k, v := range m {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	return
}

func timeMarshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(unixMicro(t), bs)
}

func timeUnmarshal(bs []byte) (t time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || micros == 0 {
		return
	}
	t = time.UnixMicro(micros)
	return
}

func timeSize(t time.Time) int {
	return varint.Int64.Size(unixMicro(t))
}

// zero times round trip as zero times
func unixMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}
