// Package loader reads and writes memory images. Three formats are
// accepted: INTCODE text (assembled on load), raw little-endian 16-bit
// words, and a CBOR container carrying the words plus assembly metadata.
package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/aryanA101a/intcode-vm-go/asm"
	"github.com/aryanA101a/intcode-vm-go/vm"
	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("intcode.loader")

type Format int

const (
	Text Format = iota
	Binary
	CBOR
)

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case Binary:
		return "bin"
	case CBOR:
		return "cbor"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat accepts the names printed by Format.String.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "intcode":
		return Text, nil
	case "bin", "binary":
		return Binary, nil
	case "cbor":
		return CBOR, nil
	}
	return 0, fmt.Errorf("unknown image format %q", s)
}

const (
	magic   = "INTCODE"
	version = 1
)

// File is the CBOR image container.
type File struct {
	Magic     string   `cbor:"magic"`
	Version   int      `cbor:"version"`
	ProgStart int      `cbor:"progstart"`
	Words     vm.Image `cbor:"words"`
	Warnings  []string `cbor:"warnings,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("loader: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

var ErrNotImage = errors.New("not an INTCODE image")

// Marshal serializes an image to CBOR.
func Marshal(f *File) ([]byte, error) {
	f.Magic = magic
	f.Version = version
	f.ProgStart = vm.ProgStart
	return cborEncMode.Marshal(f)
}

// Unmarshal decodes a CBOR image container.
func Unmarshal(data []byte) (*File, error) {
	var f File
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("loader: unmarshal image: %w", err)
	}
	if f.Magic != magic {
		return nil, ErrNotImage
	}
	if f.Version != version || f.ProgStart != vm.ProgStart {
		return nil, fmt.Errorf("loader: unsupported image version %d (progstart %d)", f.Version, f.ProgStart)
	}
	return &f, nil
}

// EncodeBinary lays the words out as little-endian 16-bit values.
func EncodeBinary(img vm.Image) []byte {
	out := make([]byte, 2*len(img))
	for i, w := range img {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(w))
	}
	return out
}

func DecodeBinary(data []byte) (vm.Image, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("loader: binary image has odd length %d", len(data))
	}
	img := make(vm.Image, len(data)/2)
	for i := range img {
		img[i] = vm.Word(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return img, nil
}

var mnemonic = regexp.MustCompile(`[LSAJTFKX][IGP]?\d+`)

// Detect guesses the format of data.
func Detect(data []byte) Format {
	if len(data) > 0 && data[0]>>5 == 5 { // CBOR major type 5: map
		if _, err := Unmarshal(data); err == nil {
			return CBOR
		}
	}
	if isText(data) && mnemonic.Match(data) {
		return Text
	}
	return Binary
}

func isText(data []byte) bool {
	for _, c := range data {
		if c >= 0x7F || (c < ' ' && c != '\n' && c != '\r' && c != '\t' && c != '\f') {
			return false
		}
	}
	return true
}

// Parse turns file contents of any supported format into an image.
// Warnings are only produced for text input.
func Parse(data []byte, config asm.Config) (vm.Image, []asm.Warning, error) {
	switch f := Detect(data); f {
	case CBOR:
		file, err := Unmarshal(data)
		if err != nil {
			return nil, nil, err
		}
		return file.Words, nil, nil
	case Text:
		as := asm.New(config)
		img, err := as.Assemble(string(data))
		return img, as.Warnings(), err
	default:
		img, err := DecodeBinary(data)
		return img, nil, err
	}
}

// Load reads and parses one or more files. Text files are concatenated in
// order before assembly, the way multi-module programs are built; binary
// and CBOR images must be given alone.
func Load(config asm.Config, paths ...string) (vm.Image, []asm.Warning, error) {
	if len(paths) == 0 {
		return nil, nil, errors.New("loader: no input files")
	}
	var text []byte
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		f := Detect(data)
		log.Debugf("%s: %s image, %d bytes", path, f, len(data))
		if f != Text {
			if len(paths) != 1 {
				return nil, nil, fmt.Errorf("loader: %s is a %s image and cannot be combined with other files", path, f)
			}
			return Parse(data, config)
		}
		text = append(text, data...)
		text = append(text, '\n')
	}
	return Parse(text, config)
}

// Save writes img to path in the requested format. Text is not a valid
// output format.
func Save(path string, img vm.Image, format Format, warnings []asm.Warning) error {
	var data []byte
	switch format {
	case Binary:
		data = EncodeBinary(img)
	case CBOR:
		f := &File{Words: img}
		for _, w := range warnings {
			f.Warnings = append(f.Warnings, w.String())
		}
		var err error
		if data, err = Marshal(f); err != nil {
			return err
		}
	default:
		return fmt.Errorf("loader: cannot save images as %s", format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	log.Infof("wrote %s image %s (%d words)", format, path, len(img))
	return nil
}
