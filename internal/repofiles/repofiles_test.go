package repofiles

import (
	"testing"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/cipher"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
)

func testCipher(t *testing.T) *cipher.Cipher {
	t.Helper()
	c, err := cipher.New("password", "salt")
	if err != nil {
		t.Fatalf("cipher.New: %v", err)
	}
	return c
}

func TestProjectDecryptsPathNameSize(t *testing.T) {
	c := testCipher(t)
	encName, err := c.Name.Encrypt("report.pdf")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	plain := []byte("hello world")
	encSize := cipher.EncryptedSize(int64(len(plain)))

	f := &model.RemoteFile{
		MountId: "m1",
		Path:    ids.RemotePath("/enc-root/" + encName),
		Type:    model.FileTypeFile,
		Size:    encSize,
	}

	rfile := Project(c, "r1", "/enc-root", f)
	if rfile.PathErr != nil {
		t.Fatalf("unexpected path error: %v", rfile.PathErr)
	}
	if rfile.DecryptedName != "report.pdf" {
		t.Errorf("expected decrypted name report.pdf, got %q", rfile.DecryptedName)
	}
	if rfile.SizeErr != nil {
		t.Fatalf("unexpected size error: %v", rfile.SizeErr)
	}
	if rfile.DecryptedSize != int64(len(plain)) {
		t.Errorf("expected decrypted size %d, got %d", len(plain), rfile.DecryptedSize)
	}
	if rfile.Category != model.CategoryPdf {
		t.Errorf("expected pdf category, got %v", rfile.Category)
	}
}

func TestProjectBadEntryDoesNotPoisonSiblings(t *testing.T) {
	c := testCipher(t)
	goodName, _ := c.Name.Encrypt("good.txt")

	good := &model.RemoteFile{MountId: "m1", Path: ids.RemotePath("/enc-root/" + goodName), Type: model.FileTypeFile, Size: cipher.EncryptedSize(3)}
	bad := &model.RemoteFile{MountId: "m1", Path: ids.RemotePath("/enc-root/not-valid-base32!!"), Type: model.FileTypeFile, Size: 5}

	goodProj := Project(c, "r1", "/enc-root", good)
	badProj := Project(c, "r1", "/enc-root", bad)

	if goodProj.PathErr != nil {
		t.Errorf("good entry should project cleanly, got %v", goodProj.PathErr)
	}
	if badProj.PathErr == nil {
		t.Fatal("expected a path decrypt error for the malformed entry")
	}
	if badProj.SizeErr == nil {
		t.Error("expected a size decrypt error for the too-short ciphertext")
	}
}

func TestInstallAndInvalidate(t *testing.T) {
	st := appstate.NewStore()
	c := testCipher(t)
	repo := &model.Repo{Id: "r1", Cipher: c, RemotePath: "/enc-root"}
	encName, _ := c.Name.Encrypt("a.txt")
	f := &model.RemoteFile{MountId: "m1", Path: ids.RemotePath("/enc-root/" + encName), Type: model.FileTypeFile, Size: cipher.EncryptedSize(1)}

	Install(st, repo, f)

	st.WithState(func(s *appstate.State) {
		rfile, ok := Get(s, f.Id())
		if !ok {
			t.Fatal("expected projection to be cached after Install")
		}
		if rfile.DecryptedName != "a.txt" {
			t.Errorf("expected a.txt, got %q", rfile.DecryptedName)
		}
	})

	InvalidateRepo(st, "r1")

	st.WithState(func(s *appstate.State) {
		if _, ok := Get(s, f.Id()); ok {
			t.Error("expected projection to be purged after InvalidateRepo")
		}
	})
}

func TestChildrenSortedByDecryptedNameCaseInsensitive(t *testing.T) {
	st := appstate.NewStore()
	c := testCipher(t)
	repo := &model.Repo{Id: "r1", Cipher: c, RemotePath: "/enc-root"}

	names := []string{"Banana", "apple", "Cherry"}
	var childIds []ids.RemoteFileId
	for _, n := range names {
		encName, _ := c.Name.Encrypt(n)
		f := &model.RemoteFile{MountId: "m1", Path: ids.RemotePath("/enc-root/" + encName), Type: model.FileTypeFile, Size: cipher.EncryptedSize(0)}
		Install(st, repo, f)
		childIds = append(childIds, f.Id())
	}

	var parentId ids.RemoteFileId = "m1:/enc-root"

	st.WithState(func(s *appstate.State) {
		s.RemoteFiles.Children[parentId] = childIds
	})

	st.WithState(func(s *appstate.State) {
		kids := Children(s, parentId)
		if len(kids) != 3 {
			t.Fatalf("expected 3 children, got %d", len(kids))
		}
		got := []string{string(kids[0].DecryptedName), string(kids[1].DecryptedName), string(kids[2].DecryptedName)}
		want := []string{"apple", "Banana", "Cherry"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("position %d: want %q, got %q", i, want[i], got[i])
			}
		}
	})
}
