package daemon_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	bulkfsv1 "github.com/jamesainslie/bulkfs/pkg/api/bulkfs/v1"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/journal"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/pathutil"
	"github.com/jamesainslie/bulkfs/pkg/daemon"
)

func mkTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if p[len(p)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0o644))
	}
}

func newEngine(t *testing.T, base string, opts ...engine.Option) *engine.Engine {
	t.Helper()
	r, err := pathutil.New(base)
	require.NoError(t, err)
	eng, err := engine.New(append([]engine.Option{engine.WithResolver(r)}, opts...)...)
	require.NoError(t, err)
	return eng
}

// serve runs svc on an in-memory listener and returns a client for it.
func serve(t *testing.T, svc *daemon.Service) (bulkfsv1.BulkFSClient, *daemon.Server) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := daemon.NewServerWithListener(lis, svc)
	go func() {
		_ = srv.Serve()
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		_ = srv.Close()
	})
	return bulkfsv1.NewBulkFSClient(conn), srv
}

func TestService_RenameBulkJournalsLiveRuns(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "IMG_1.jpg", "sub/IMG_2.jpg", "keep.txt")

	j, err := journal.New(t.TempDir())
	require.NoError(t, err)

	client, _ := serve(t, daemon.NewService(newEngine(t, root), daemon.WithJournal(j)))
	ctx := context.Background()

	preview, err := client.RenameBulk(ctx, &engine.RenameRequest{
		RootPath: root, FindText: "IMG", ReplaceText: "trip", Recursive: true, DryRun: true,
	})
	require.NoError(t, err)
	assert.True(t, preview.DryRun)
	assert.Equal(t, 2, preview.Count("renamed"))
	assert.FileExists(t, filepath.Join(root, "IMG_1.jpg"))

	summary, err := client.RenameBulk(ctx, &engine.RenameRequest{
		RootPath: root, FindText: "IMG", ReplaceText: "trip", Recursive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, engine.OpRename, summary.Operation)
	assert.Equal(t, 2, summary.Count("renamed"))
	assert.Equal(t, 2, summary.Count("skipped"), "keep.txt and sub keep their names")
	assert.FileExists(t, filepath.Join(root, "trip_1.jpg"))
	assert.FileExists(t, filepath.Join(root, "sub", "trip_2.jpg"))

	entries, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the live run is journaled")
	assert.Equal(t, "IMG", entries[0].Params.FindText)
	assert.Equal(t, 2, entries[0].Summary.Count("renamed"))
}

func TestService_RenameBulkPreconditionIsASummary(t *testing.T) {
	client, _ := serve(t, daemon.NewService(newEngine(t, t.TempDir())))

	summary, err := client.RenameBulk(context.Background(), &engine.RenameRequest{FindText: "  "})
	require.NoError(t, err)
	assert.Equal(t, engine.MsgFindTextRequired, summary.Error)
	assert.Empty(t, summary.Details)

	st, err := client.Status(context.Background(), &bulkfsv1.StatusRequest{})
	require.NoError(t, err)
	assert.Zero(t, st.Operations)
}

func TestService_DeleteBulk(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "a.tmp", "tmpdir/inner.txt", "keep.txt")

	client, _ := serve(t, daemon.NewService(newEngine(t, root)))

	summary, err := client.DeleteBulk(context.Background(), &bulkfsv1.DeleteRequest{
		DeleteRequest: engine.DeleteRequest{RootPath: root, Keyword: "tmp", Recursive: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count("matched"))
	assert.Equal(t, 2, summary.Count("deleted"))
	assert.NoFileExists(t, filepath.Join(root, "a.tmp"))
	assert.NoDirExists(t, filepath.Join(root, "tmpdir"))
	assert.FileExists(t, filepath.Join(root, "keep.txt"))
}

func TestService_DeleteBulkTrash(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "old.log")

	t.Run("unavailable", func(t *testing.T) {
		client, _ := serve(t, daemon.NewService(newEngine(t, root)))

		_, err := client.DeleteBulk(context.Background(), &bulkfsv1.DeleteRequest{
			DeleteRequest: engine.DeleteRequest{RootPath: root, Keyword: "old"},
			Trash:         true,
		})
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
		assert.FileExists(t, filepath.Join(root, "old.log"))
	})

	t.Run("routed to trash engine", func(t *testing.T) {
		var trashed []string
		trashEngine := newEngine(t, root, engine.WithRemover(engine.RemoverFunc(func(path string, _ bool) error {
			trashed = append(trashed, path)
			return nil
		})))
		client, _ := serve(t, daemon.NewService(newEngine(t, root), daemon.WithTrashEngine(trashEngine)))

		summary, err := client.DeleteBulk(context.Background(), &bulkfsv1.DeleteRequest{
			DeleteRequest: engine.DeleteRequest{RootPath: root, Keyword: "old"},
			Trash:         true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Count("deleted"))
		assert.Equal(t, []string{filepath.Join(root, "old.log")}, trashed)
	})
}

func TestService_SerialisesMutations(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"a", "b", "c", "d"} {
		mkTree(t, root, d+"/x_"+d+".txt")
	}
	client, _ := serve(t, daemon.NewService(newEngine(t, root)))

	var wg sync.WaitGroup
	results := make([]*engine.Summary, 4)
	for i, d := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := client.RenameBulk(context.Background(), &engine.RenameRequest{
				RootPath: filepath.Join(root, d), FindText: "x_", ReplaceText: "y_",
			})
			if err == nil {
				results[i] = s
			}
		}()
	}
	wg.Wait()

	for i, d := range []string{"a", "b", "c", "d"} {
		require.NotNil(t, results[i])
		assert.Equal(t, 1, results[i].Count("renamed"))
		assert.FileExists(t, filepath.Join(root, d, "y_"+d+".txt"))
	}
}

func TestService_List(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "b.txt", "A.txt", "sub/", ".hidden", "debug.log")

	client, _ := serve(t, daemon.NewService(newEngine(t, root)))

	snap, err := client.List(context.Background(), &bulkfsv1.ListRequest{
		Path:           root,
		HideHidden:     true,
		IgnoreSuffixes: []string{".log"},
	})
	require.NoError(t, err)
	assert.True(t, snap.Exists)

	var names []string
	for _, e := range snap.Entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"sub", "A.txt", "b.txt"}, names)

	missing, err := client.List(context.Background(), &bulkfsv1.ListRequest{Path: filepath.Join(root, "nope")})
	require.NoError(t, err)
	assert.False(t, missing.Exists)
	assert.NotEmpty(t, missing.Error)

	_, err = client.List(context.Background(), &bulkfsv1.ListRequest{Path: root, SortBy: "colour"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestService_Status(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "a.txt")
	client, _ := serve(t, daemon.NewService(newEngine(t, root), daemon.WithVersion("1.2.3")))

	_, err := client.RenameBulk(context.Background(), &engine.RenameRequest{RootPath: root, FindText: "a", ReplaceText: "b"})
	require.NoError(t, err)

	st, err := client.Status(context.Background(), &bulkfsv1.StatusRequest{})
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), st.PID)
	assert.Equal(t, "1.2.3", st.Version)
	assert.Equal(t, int64(1), st.Operations)
	assert.Equal(t, root, st.BaseDir)
}

func TestService_Shutdown(t *testing.T) {
	svc := daemon.NewService(newEngine(t, t.TempDir()))

	resp, err := svc.Shutdown(context.Background(), &bulkfsv1.ShutdownRequest{})
	require.NoError(t, err)
	assert.False(t, resp.Accepted, "no server attached")

	client, _ := serve(t, svc)
	resp, err = client.Shutdown(context.Background(), &bulkfsv1.ShutdownRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Accepted)
}

func TestService_CancelledContext(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "a.txt")
	svc := daemon.NewService(newEngine(t, root))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RenameBulk(ctx, &engine.RenameRequest{RootPath: root, FindText: "a", ReplaceText: "b"})
	assert.Equal(t, codes.Canceled, status.Code(err))
	assert.FileExists(t, filepath.Join(root, "a.txt"))
}
