package integration

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDOCXParagraphs(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph of the essay.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph with </w:t></w:r><w:r><w:t>a split run.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := ExtractAttachmentText(models.Attachment{Filename: "essay.docx"}, buildDOCX(t, doc))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Fatalf("paragraphs = %d (%q), want 2", len(lines), text)
	}
	if lines[0] != "First paragraph of the essay." {
		t.Errorf("first paragraph = %q", lines[0])
	}
	if lines[1] != "Second paragraph with a split run." {
		t.Errorf("second paragraph = %q", lines[1])
	}
}

func TestExtractDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.Close()

	if _, err := ExtractAttachmentText(models.Attachment{Filename: "empty.docx"}, buf.Bytes()); err == nil {
		t.Fatal("expected error for docx without word/document.xml")
	}
}

func TestExtractPlainText(t *testing.T) {
	content := []byte("  line one  \n\n\tline   two\n")

	text, err := ExtractAttachmentText(models.Attachment{Filename: "notes.txt"}, content)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "line one\nline two" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractTextByContentType(t *testing.T) {
	text, err := ExtractAttachmentText(
		models.Attachment{Filename: "download", ContentType: "text/plain"},
		[]byte("hello there"),
	)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "hello there" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	if _, err := ExtractAttachmentText(models.Attachment{Filename: "video.mp4"}, nil); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	if _, err := ExtractAttachmentText(models.Attachment{Filename: "bad.pdf"}, []byte("not a pdf")); err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}
