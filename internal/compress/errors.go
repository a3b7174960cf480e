package compress

import "fmt"

// ErrorKind categorizes per-file failures.
type ErrorKind int

const (
	// KindIO covers stat, read, directory creation, write and rename failures.
	KindIO ErrorKind = iota
	// KindDecode indicates the source is not a recognizable image.
	KindDecode
	// KindEncode indicates the encoder rejected the image or its parameters.
	KindEncode
)

func (k ErrorKind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	default:
		return "io"
	}
}

// FileError is the error carried by a failed ResultRecord.
type FileError struct {
	Kind ErrorKind
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s error: %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func ioError(path, op string, err error) *FileError {
	return &FileError{Kind: KindIO, Path: path, Op: op, Err: err}
}
