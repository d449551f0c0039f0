package wiremsg

// List is a u16 element count followed by the elements. bind returns the
// field codec of one element:
//
//	wiremsg.List(&m.Hashes, func(h *ChainHash) wiremsg.Field { return wiremsg.Array(h[:]) })
func List[T any](p *[]T, bind func(*T) Field) Field {
	return FieldFunc{
		Encode: func(w *Writer) {
			items := *p
			if len(items) > MaxVarBytes {
				w.Failf("%d elements exceed u16 count", len(items))
				return
			}
			w.WriteUint16(uint16(len(items)))
			for i := range items {
				if w.Err() != nil {
					return
				}
				bind(&items[i]).EncodeField(w)
			}
		},
		Decode: func(r *Reader) {
			var n uint16
			r.ReadUint16(&n)
			if r.Err() != nil {
				return
			}
			var items []T
			if n > 0 {
				items = make([]T, n)
			}
			for i := range items {
				bind(&items[i]).DecodeField(r)
				if r.Err() != nil {
					return
				}
			}
			*p = items
		},
	}
}

// ListRest is a sequence of elements with no count: decoding reads elements
// until the source ends. Like Rest, it belongs at the end of a TLV payload.
func ListRest[T any](p *[]T, bind func(*T) Field) Field {
	return FieldFunc{
		Encode: func(w *Writer) {
			items := *p
			for i := range items {
				if w.Err() != nil {
					return
				}
				bind(&items[i]).EncodeField(w)
			}
		},
		Decode: func(r *Reader) {
			var items []T
			for r.More() {
				var item T
				bind(&item).DecodeField(r)
				if r.Err() != nil {
					return
				}
				items = append(items, item)
			}
			if r.Err() == nil {
				*p = items
			}
		},
	}
}
