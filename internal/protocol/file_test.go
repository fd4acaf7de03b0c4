package protocol

import "testing"

func TestParseFileRef(t *testing.T) {
	tt := []struct {
		name   string
		path   string
		file   string
		subdir string
	}{
		{name: "absolute path", path: "/out/partA/result.zip", file: "result.zip", subdir: "partA"},
		{name: "relative path", path: "partB/data.csv", file: "data.csv", subdir: "partB"},
		{name: "bare name", path: "result.zip", file: "result.zip", subdir: ""},
		{name: "rooted name", path: "/result.zip", file: "result.zip", subdir: ""},
		{name: "trailing slash", path: "out/partA/", file: "", subdir: "partA"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			ref := ParseFileRef(tc.path)
			if ref.Name != tc.file {
				t.Errorf("Name = %q, want %q", ref.Name, tc.file)
			}
			if ref.Subdir != tc.subdir {
				t.Errorf("Subdir = %q, want %q", ref.Subdir, tc.subdir)
			}
			if ref.Path != tc.path {
				t.Errorf("Path = %q, want %q", ref.Path, tc.path)
			}
		})
	}
}

func TestFileRefDownloadPath(t *testing.T) {
	tt := []struct {
		name   string
		prefix string
		ref    FileRef
		want   string
	}{
		{name: "default prefix", prefix: "/download/zip", ref: FileRef{Name: "result.zip", Subdir: "partA"}, want: "/download/zip/partA/result.zip"},
		{name: "trailing slash prefix", prefix: "/download/zip/", ref: FileRef{Name: "result.zip", Subdir: "partA"}, want: "/download/zip/partA/result.zip"},
		{name: "empty subdir", prefix: "/download/zip", ref: FileRef{Name: "result.zip"}, want: "/download/zip//result.zip"},
		{name: "escaped name", prefix: "/dl", ref: FileRef{Name: "my file.zip", Subdir: "a"}, want: "/dl/a/my%20file.zip"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ref.DownloadPath(tc.prefix); got != tc.want {
				t.Errorf("DownloadPath() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEventFile(t *testing.T) {
	ev := Classify("FILE: /out/partA/result.zip ")
	ref := ev.File()
	if ref.Name != "result.zip" || ref.Subdir != "partA" {
		t.Errorf("unexpected file ref %+v", ref)
	}
	if (FileRef{}).IsZero() != true {
		t.Error("zero FileRef should report IsZero")
	}
	if ref.IsZero() {
		t.Error("parsed FileRef should not report IsZero")
	}
}
