package serialization

import (
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/golang/snappy"
	"github.com/kiteco/activeself/kite-golib/fileutil"
	"github.com/spf13/afero"
)

// Decoder is an interface that matches gob.Decoder and json.Decoder
type Decoder interface {
	// Decode extracts an object from the stream
	Decode(interface{}) error
}

// ErrStop is a special value returned from handlers to cease processing
var ErrStop = errors.New("stop processing requested")

// decodeWith with extracts objects from the given decoder and passes them to the handler
func decodeWith(d Decoder, elemType reflect.Type, handler func(interface{}) error) error {
	for {
		elem := reflect.New(elemType).Interface()
		err := d.Decode(elem)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		err = handler(elem)
		if err == ErrStop {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Decode loads objects from a file. If the path ends with .gz or .sz the
// contents are decompressed; the encoding is then determined by the remaining
// file extension (.json or .gob).
//
// The handler is either a pointer, which receives the first object, or a
// function taking one pointer argument that is called for every object:
//
//   var sentences []Sentence
//   err := serialization.Decode(fs, "/tmp/train.gob.gz", func(s *Sentence) {
//     sentences = append(sentences, *s)
//   })
func Decode(fs afero.Fs, path string, handler interface{}) error {
	r, err := fileutil.NewReader(fs, path)
	if err != nil {
		return fmt.Errorf("error loading %s: %v", path, err)
	}
	defer r.Close()
	return DecodeReader(r, path, handler)
}

// DecodeReader is like Decode but reads from r, using path only to determine
// the compression and encoding.
func DecodeReader(r io.Reader, path string, handler interface{}) error {
	format, err := Format(path)
	if err != nil {
		return err
	}

	switch Compression(path) {
	case ".gz":
		rd, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("error loading %s: %v", path, err)
		}
		defer rd.Close()
		r = rd
	case ".sz":
		r = snappy.NewReader(r)
	}

	var d Decoder
	switch format {
	case ".json":
		d = json.NewDecoder(r)
	case ".gob":
		d = gob.NewDecoder(r)
	}

	f := reflect.ValueOf(handler)
	if f.Kind() == reflect.Ptr {
		if err := d.Decode(handler); err != nil {
			return fmt.Errorf("error decoding %s: %v", path, err)
		}
		return nil
	}
	if f.Kind() != reflect.Func {
		panic("expected a function or a pointer as last parameter")
	}

	funcType := f.Type()
	if funcType.NumIn() != 1 {
		panic("expected a function with one input parameter")
	}
	if funcType.NumOut() > 1 {
		panic("expected a function with zero or one output parameter")
	}
	ptrType := funcType.In(0)
	if ptrType.Kind() != reflect.Ptr {
		panic("expected function parameter to be a pointer")
	}
	elemType := ptrType.Elem()

	err = decodeWith(d, elemType, func(x interface{}) error {
		ret := f.Call([]reflect.Value{reflect.ValueOf(x)})
		if len(ret) == 0 || ret[0].IsNil() {
			return nil
		}
		return ret[0].Interface().(error)
	})
	if err != nil {
		return fmt.Errorf("error decoding %s: %v", path, err)
	}
	return nil
}
