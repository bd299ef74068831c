package report

import (
	"bytes"

	"github.com/tinylib/msgp/msgp"
)

// EncodeMsg and DecodeMsg are hand-written in the shape msgp's codegen
// produces (map header + field name + value, one WriteX call per
// field), used here for the compact binary report path instead of
// jsoniter's text encoding.

func (b BundleReport) EncodeMsg(en *msgp.Writer) error {
	if err := en.WriteMapHeader(7); err != nil {
		return err
	}
	fields := []struct {
		name string
		fn   func() error
	}{
		{"id", func() error { return en.WriteInt(b.ID) }},
		{"source", func() error { return en.WriteString(b.Source) }},
		{"destination", func() error { return en.WriteString(b.Destination) }},
		{"sizeBytes", func() error { return en.WriteInt(b.SizeBytes) }},
		{"hops", func() error { return en.WriteInt(b.Hops) }},
		{"outcome", func() error { return en.WriteString(b.Outcome) }},
		{"latencySec", func() error { return en.WriteFloat64(b.LatencySec) }},
	}
	for _, f := range fields {
		if err := en.WriteString(f.name); err != nil {
			return err
		}
		if err := f.fn(); err != nil {
			return err
		}
	}
	return nil
}

func (s Summary) EncodeMsg(en *msgp.Writer) error {
	if err := en.WriteMapHeader(11); err != nil {
		return err
	}
	if err := writeStrField(en, "mode", s.Mode); err != nil {
		return err
	}
	ints := []struct {
		name string
		v    int
	}{
		{"totalBundles", s.TotalBundles},
		{"delivered", s.Delivered},
		{"expired", s.Expired},
		{"notDelivered", s.NotDelivered},
		{"bufferDrops", s.BufferDrops},
		{"ttlDrops", s.TTLDrops},
		{"dupSuppressed", s.DupSuppressed},
	}
	for _, f := range ints {
		if err := en.WriteString(f.name); err != nil {
			return err
		}
		if err := en.WriteInt(f.v); err != nil {
			return err
		}
	}
	floats := []struct {
		name string
		v    float64
	}{
		{"airBytesTotal", s.AirBytesTotal},
		{"meanLatencySec", s.MeanLatencySec},
		{"meanHops", s.MeanHops},
	}
	for _, f := range floats {
		if err := en.WriteString(f.name); err != nil {
			return err
		}
		if err := en.WriteFloat64(f.v); err != nil {
			return err
		}
	}
	return nil
}

func writeStrField(en *msgp.Writer, name, v string) error {
	if err := en.WriteString(name); err != nil {
		return err
	}
	return en.WriteString(v)
}

// MarshalMsgpack encodes v (a BundleReport or Summary) to the MessagePack
// binary form via msgp.Writer, for the compact persisted-output path
// alongside MarshalJSON's text form.
func MarshalMsgpack(e msgp.Encodable) ([]byte, error) {
	var buf bytes.Buffer
	w := msgp.NewWriter(&buf)
	if err := e.EncodeMsg(w); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
