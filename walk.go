package schemawire

import (
	"errors"
	"fmt"
)

// Visitor streams through an encoded value's bytes in lockstep with its
// Schema, without ever materializing a full Term tree — for tooling that
// wants to react to specific fields/constructors in a large payload
// cheaply. Grounded directly in walker.go's Visitor/Walk/Walker.walk,
// reimplemented against an explicit Schema value instead of the teacher's
// inline WireType schema stream (there is no separate "schema reader" to
// walk in lockstep with the body reader here — the Schema is already a
// materialized tree, so only the body Reader advances).
type Visitor interface {
	VisitLeaf(path string, leaf Schema, r *Reader) error
	VisitVectorStart(path string, length int) error
	VisitVectorEnd(path string) error
	VisitProductStart(path string) error
	VisitProductEnd(path string) error
	VisitRecordStart(path string) error
	VisitRecordEnd(path string) error
	VisitVariantStart(path, name string, tag int) error
	VisitVariantEnd(path string) error
}

// ErrSkipVisit may be returned by VisitLeaf to tell Walk to advance past
// the current leaf's bytes without further inspection, mirroring the
// teacher's ErrSkipVisit/fieldBytes pairing.
var ErrSkipVisit = errors.New("schemawire: skip visit")

// Walk decodes body according to s, invoking visitor at each structural
// boundary and leaf. Recursion through Fix/Self mirrors termdecoder.go's
// selfPoint stack.
func Walk(s Schema, body []byte, visitor Visitor) error {
	r := NewReader(body)
	w := &walker{visitor: visitor}
	return w.walk(s, &r, "")
}

type walker struct {
	visitor Visitor
	points  []Schema
}

func (w *walker) walk(s Schema, r *Reader, path string) error {
	switch v := Untag(s).(type) {
	case leafSchema:
		err := w.visitor.VisitLeaf(path, v, r)
		if err == ErrSkipVisit {
			skipLeaf(v, r)
			return nil
		}
		return err
	case SSchemaRef:
		ref, err := Bootstrap(v.Version)
		if err != nil {
			return err
		}
		return w.walk(ref, r, path)
	case SVector:
		n := int(r.ReadVarint())
		if err := w.visitor.VisitVectorStart(path, n); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := w.walk(v.Element, r, path); err != nil {
				return err
			}
		}
		return w.visitor.VisitVectorEnd(path)
	case SProduct:
		if err := w.visitor.VisitProductStart(path); err != nil {
			return err
		}
		for _, f := range v.Fields {
			if err := w.walk(f, r, path); err != nil {
				return err
			}
		}
		return w.visitor.VisitProductEnd(path)
	case SRecord:
		if err := w.visitor.VisitRecordStart(path); err != nil {
			return err
		}
		for _, f := range v.Fields {
			if err := w.walk(f.Schema, r, path+"."+f.Name); err != nil {
				return err
			}
		}
		return w.visitor.VisitRecordEnd(path)
	case SVariant:
		tag := int(r.ReadVarint())
		if tag >= len(v.Constructors) {
			return ErrInvalidTag
		}
		c := v.Constructors[tag]
		if err := w.visitor.VisitVariantStart(path, c.Name, tag); err != nil {
			return err
		}
		if err := w.walk(c.Schema, r, path+"."+c.Name); err != nil {
			return err
		}
		return w.visitor.VisitVariantEnd(path)
	case SFix:
		w.points = append(w.points, v)
		defer func() { w.points = w.points[:len(w.points)-1] }()
		return w.walk(v.Body, r, path)
	case SSelf:
		idx := len(w.points) - 1 - int(v.N)
		if idx < 0 {
			return errors.New("schemawire: Self has no enclosing Fix")
		}
		return w.walk(w.points[idx].(SFix).Body, r, path)
	}
	return fmt.Errorf("schemawire: unknown Schema constructor %T", s)
}

// skipLeaf advances r past one leaf value without returning it, used when
// a Visitor opts out of a field via ErrSkipVisit.
func skipLeaf(l leafSchema, r *Reader) {
	switch l {
	case leafBool, leafW8, leafI8:
		r.Read(1)
	case leafW16, leafI16:
		r.Read(2)
	case leafW32, leafI32, leafFloat:
		r.Read(4)
	case leafW64, leafI64, leafDouble, leafUTCTime:
		r.Read(8)
	case leafChar, leafInteger:
		r.SkipVarint()
	case leafBytes, leafText:
		n := r.ReadVarint()
		r.Read(int(n))
	}
}
