package manifest

import (
	"encoding/xml"
	"io"
)

// The XML layout, including its element names, is shared with reports written by
// earlier releases and must not change.

type xmlReport struct {
	XMLName     xml.Name       `xml:"root"`
	Application xmlApplication `xml:"application"`
	Files       []xmlFile      `xml:"file_entity"`
}

type xmlApplication struct {
	Version string `xml:"version"`
}

type xmlFile struct {
	Name        string        `xml:"name"`
	Size        int64         `xml:"filesize_bytes"`
	HiddenBytes int           `xml:"number_hidden_data_bytes"`
	Checksums   []xmlChecksum `xml:"hash_cheksum>hash_cheksum_entity"`
}

type xmlChecksum struct {
	Algorithm string `xml:"algorithm_name"`
	Value     string `xml:"cheksum"`
}

type xmlCodec struct{}

func (xmlCodec) Encode(w io.Writer, m *Manifest) error {
	report := xmlReport{
		Application: xmlApplication{Version: m.Version},
		Files:       make([]xmlFile, len(m.Entries)),
	}

	for i, e := range m.Entries {
		file := xmlFile{Name: e.Name, Size: e.Size, HiddenBytes: e.HiddenBytes}
		for _, c := range e.Checksums {
			file.Checksums = append(file.Checksums, xmlChecksum{Algorithm: string(c.Algorithm), Value: c.Value})
		}

		report.Files[i] = file
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")

	if err := enc.Encode(report); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")

	return err
}

func (xmlCodec) Decode(data []byte) (*Manifest, error) {
	var report xmlReport
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, err
	}

	m := &Manifest{Version: report.Application.Version, Entries: make([]Entry, len(report.Files))}

	for i, f := range report.Files {
		entry := Entry{Name: f.Name, Size: f.Size, HiddenBytes: f.HiddenBytes}
		for _, c := range f.Checksums {
			entry.Checksums = append(entry.Checksums, Checksum{Algorithm: Algorithm(c.Algorithm), Value: c.Value})
		}

		m.Entries[i] = entry
	}

	return m, nil
}
