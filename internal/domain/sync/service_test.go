package sync

import (
	"bytes"
	"context"
	gosync "sync"
	"testing"
	"time"

	"wesync/internal/domain/folder"
	"wesync/internal/domain/mailbox"
	"wesync/internal/domain/message"
	"wesync/internal/domain/notice"
	"wesync/internal/domain/privacy"
	"wesync/internal/infrastructure/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

const (
	romeo    = "romeo"
	juliet   = "juliet"
	lawrence = "lawrence"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

type recorder struct {
	mu      gosync.Mutex
	notices map[string][]*notice.Notice
}

func newRecorder() *recorder {
	return &recorder{notices: map[string][]*notice.Notice{}}
}

func (r *recorder) Send(_ context.Context, username string, n *notice.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices[username] = append(r.notices[username], n)
	return nil
}

func (r *recorder) of(username string) []*notice.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notices[username]
}

type fixture struct {
	engine  *Service
	mailbox *mailbox.Service
	folders *memory.FolderRepository
	notices *recorder
	privacy *privacy.Service
}

func newFixture(t *testing.T, config *ServiceConfig) *fixture {
	t.Helper()
	folders := memory.NewFolderRepository()
	mb := mailbox.NewService(folders, memory.NewMessageRepository(), slog.Default(), &mailbox.ServiceConfig{Now: fixedNow})
	rec := newRecorder()
	policy := privacy.NewService()
	if config == nil {
		config = &ServiceConfig{}
	}
	config.Now = fixedNow
	config.SupportedProperties = append(config.SupportedProperties, "roster", folder.PropMembers, folder.PropHistory)

	return &fixture{
		engine:  NewService(mb, policy, nil, rec, slog.Default(), config),
		mailbox: mb,
		folders: folders,
		notices: rec,
		privacy: policy,
	}
}

func text(from, to, id, content string) *message.Meta {
	return &message.Meta{ID: id, From: from, To: to, Type: message.TypeText, Content: []byte(content)}
}

// send отправляет сообщения без получения страницы
func (f *fixture) send(t *testing.T, q Quirks, username, folderID string, changes ...*message.Meta) *Response {
	t.Helper()
	resp, err := f.engine.Sync(context.Background(), username, q, &Request{
		FolderID:      folderID,
		Key:           folder.BootstrapKey,
		IsSendOnly:    true,
		ClientChanges: changes,
	})
	require.NoError(t, err)
	return resp
}

func contents(metas []*message.Meta) []string {
	out := make([]string, 0, len(metas))
	for _, m := range metas {
		out = append(out, string(m.Content))
	}
	return out
}

// score n-й id папки при настройках по умолчанию
func score(n int64) int64 {
	return (n*100+1)*1_000_000 + 240315
}

func TestSync_BasicConversation(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t, nil)
	rj := folder.OnConversation(romeo, juliet)
	jr := folder.OnConversation(juliet, romeo)
	_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
	require.NoError(t, err)

	// Act
	sent := f.send(t, Current, romeo, rj, text(romeo, juliet, "c1", "hi"))
	resp, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: jr, Key: folder.BootstrapKey, IsFullSync: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, folder.BootstrapKey, sent.NextKey)
	require.Len(t, sent.ClientChanges, 1)
	assert.Equal(t, "c1", sent.ClientChanges[0].ID)
	assert.Equal(t, folder.ChildID(rj, score(1)), string(sent.ClientChanges[0].Content))
	assert.Equal(t, fixedNow().Unix(), sent.ClientChanges[0].Time)

	require.Len(t, resp.ServerChanges, 1)
	got := resp.ServerChanges[0]
	assert.Equal(t, "hi", string(got.Content))
	assert.Equal(t, romeo, got.From)
	assert.Equal(t, juliet, got.To)
	assert.True(t, resp.IsFullSync)
	assert.False(t, resp.HasNext)
	assert.True(t, folder.IsEmptyKey(resp.NextKey))
}

func TestSync_OverBatchIncremental(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	rj := folder.OnConversation(romeo, juliet)
	jr := folder.OnConversation(juliet, romeo)
	_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
	require.NoError(t, err)

	var changes []*message.Meta
	for i := range 21 {
		changes = append(changes, text(romeo, juliet, "c", string(rune('a'+i))))
	}
	f.send(t, Current, romeo, rj, changes...)

	first, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: jr, Key: folder.BootstrapKey})
	require.NoError(t, err)
	assert.False(t, first.IsFullSync)
	assert.Len(t, first.ServerChanges, 20)
	assert.True(t, first.HasNext)
	assert.False(t, folder.IsEmptyKey(first.NextKey))

	second, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: jr, Key: first.NextKey})
	require.NoError(t, err)
	require.Len(t, second.ServerChanges, 1)
	assert.Equal(t, "u", string(second.ServerChanges[0].Content))
	assert.False(t, second.HasNext)
	assert.Equal(t, folder.EmptyKey(jr, false), second.NextKey)

	third, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: jr, Key: second.NextKey})
	require.NoError(t, err)
	assert.Empty(t, third.ServerChanges)
	unread, err := f.mailbox.UnreadNumber(ctx, jr)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestSync_OversizedClientChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	rj := folder.OnConversation(romeo, juliet)
	_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
	require.NoError(t, err)

	huge := &message.Meta{ID: "big", From: romeo, To: juliet, Type: message.TypeFile, Content: bytes.Repeat([]byte{1}, DefaultMaxBodyLength+1)}
	sent := f.send(t, Current, romeo, rj, huge, text(romeo, juliet, "small", "ok"))

	require.Len(t, sent.ClientChanges, 1)
	assert.Equal(t, "small", sent.ClientChanges[0].ID)

	resp, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: folder.OnConversation(juliet, romeo), Key: folder.BootstrapKey, IsFullSync: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, contents(resp.ServerChanges))
}

func TestSync_OversizedPageItemIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &ServiceConfig{MaxBodyLength: 200})
	jr, err := f.mailbox.NewConversation(ctx, juliet, romeo)
	require.NoError(t, err)
	_, err = f.mailbox.StoreTo(ctx, jr, text(romeo, juliet, "", string(bytes.Repeat([]byte("x"), 300))), true)
	require.NoError(t, err)
	_, err = f.mailbox.StoreTo(ctx, jr, text(romeo, juliet, "", "short"), true)
	require.NoError(t, err)

	resp, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: jr, Key: folder.BootstrapKey})

	require.NoError(t, err)
	assert.Equal(t, []string{"short"}, contents(resp.ServerChanges))
	changes, err := f.folders.Changes(ctx, jr)
	require.NoError(t, err)
	assert.Equal(t, []folder.Change{folder.AddedScore(score(2))}, changes)
}

func TestSync_PaginationCompleteness(t *testing.T) {
	ctx := context.Background()
	sent := []string{"1", "2", "3", "4", "5"}

	tests := []struct {
		name     string
		batch    int
		forward  bool
		expected []string
	}{
		{name: "batch of one forward", batch: 1, forward: true, expected: sent},
		{name: "batch of two forward", batch: 2, forward: true, expected: sent},
		{name: "batch over total", batch: 100, forward: true, expected: sent},
		{name: "batch of two backward", batch: 2, forward: false, expected: []string{"4", "5", "2", "3", "1"}},
		{name: "batch of one backward", batch: 1, forward: false, expected: []string{"5", "4", "3", "2", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, &ServiceConfig{BatchSize: tt.batch})
			rj := folder.OnConversation(romeo, juliet)
			jr := folder.OnConversation(juliet, romeo)
			_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
			require.NoError(t, err)
			for _, c := range sent {
				f.send(t, Current, romeo, rj, text(romeo, juliet, "c"+c, c))
			}

			// Act
			var got []string
			key := folder.BootstrapKey
			for range 20 {
				resp, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: jr, Key: key, IsFullSync: true, IsForward: tt.forward})
				require.NoError(t, err)
				got = append(got, contents(resp.ServerChanges)...)
				key = resp.NextKey
				if !resp.HasNext || folder.IsEmptyKey(key) {
					break
				}
			}

			// Assert
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSync_HintChild(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &ServiceConfig{BatchSize: 2})
	rj := folder.OnConversation(romeo, juliet)
	jr := folder.OnConversation(juliet, romeo)
	_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
	require.NoError(t, err)
	for _, c := range []string{"1", "2", "3", "4"} {
		f.send(t, Current, romeo, rj, text(romeo, juliet, "c"+c, c))
	}

	resp, err := f.engine.Sync(ctx, juliet, Current, &Request{
		FolderID:    jr,
		Key:         folder.BootstrapKey,
		IsFullSync:  true,
		IsForward:   true,
		HintChildID: folder.ChildID(jr, score(2)),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4"}, contents(resp.ServerChanges))
	assert.True(t, resp.HasNext)
	assert.Equal(t, folder.KeyOnChild(jr, "401240315"), resp.NextKey)
}

func TestSync_IdempotentResync(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &ServiceConfig{BatchSize: 2})
	rj := folder.OnConversation(romeo, juliet)
	jr := folder.OnConversation(juliet, romeo)
	_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
	require.NoError(t, err)
	f.send(t, Current, romeo, rj, text(romeo, juliet, "a", "1"), text(romeo, juliet, "b", "2"), text(romeo, juliet, "c", "3"))

	first, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: jr, Key: folder.BootstrapKey})
	require.NoError(t, err)

	for _, key := range []string{folder.BootstrapKey, first.NextKey} {
		req := &Request{FolderID: jr, Key: key}
		a, err := f.engine.Sync(ctx, juliet, Current, req)
		require.NoError(t, err)
		b, err := f.engine.Sync(ctx, juliet, Current, req)
		require.NoError(t, err)
		assert.Equal(t, a, b, key)
	}
}

func TestSync_SelectiveAck(t *testing.T) {
	ctx := context.Background()
	rj := folder.OnConversation(romeo, juliet)
	jr := folder.OnConversation(juliet, romeo)
	yes, no := true, false

	setup := func(t *testing.T) *fixture {
		f := newFixture(t, nil)
		_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
		require.NoError(t, err)
		f.send(t, Current, romeo, rj, text(romeo, juliet, "a", "1"), text(romeo, juliet, "b", "2"), text(romeo, juliet, "c", "3"))
		return f
	}

	t.Run("sibling in harmony prunes through ack", func(t *testing.T) {
		f := setup(t)

		resp, err := f.engine.Sync(ctx, juliet, Current, &Request{
			FolderID:           jr,
			Key:                folder.BootstrapKey,
			IsSiblingInHarmony: &yes,
			SelectiveAck:       []string{folder.ChildID(jr, score(2))},
		})
		require.NoError(t, err)
		assert.Empty(t, resp.ServerChanges)
		assert.Equal(t, folder.BootstrapKey, resp.NextKey)

		next, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: jr, Key: resp.NextKey})
		require.NoError(t, err)
		assert.Equal(t, []string{"3"}, contents(next.ServerChanges))
	})

	t.Run("sibling not in harmony truncates before ack", func(t *testing.T) {
		f := setup(t)

		resp, err := f.engine.Sync(ctx, juliet, Current, &Request{
			FolderID:           jr,
			Key:                folder.BootstrapKey,
			IsSiblingInHarmony: &no,
			SelectiveAck:       []string{folder.ChildID(jr, score(3))},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, contents(resp.ServerChanges))
		assert.Equal(t, folder.KeyOnChange(jr, folder.AddedScore(score(2))), resp.NextKey)
		assert.False(t, resp.HasNext)
	})

	t.Run("legacy ignores acks", func(t *testing.T) {
		f := setup(t)

		resp, err := f.engine.Sync(ctx, juliet, Legacy, &Request{
			FolderID:           jr,
			Key:                folder.BootstrapKey,
			IsSiblingInHarmony: &yes,
			SelectiveAck:       []string{folder.ChildID(jr, score(3))},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3"}, contents(resp.ServerChanges))
	})
}

func TestSync_Access(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
	require.NoError(t, err)
	groupID, err := f.mailbox.CreateGroup(ctx, romeo, []string{juliet})
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		req      *Request
		wantErr  error
	}{
		{name: "foreign conversation", username: lawrence, req: &Request{FolderID: folder.OnConversation(romeo, juliet), Key: "0"}, wantErr: ErrPermissionDenied},
		{name: "foreign group folder", username: juliet, req: &Request{FolderID: folder.OnGroup(romeo, groupID), Key: "0"}, wantErr: ErrPermissionDenied},
		{name: "own group folder without membership", username: lawrence, req: &Request{FolderID: folder.OnGroup(lawrence, groupID), Key: "0"}, wantErr: ErrPermissionDenied},
		{name: "unsupported property", username: romeo, req: &Request{FolderID: folder.OnProperty(romeo, "secret"), Key: "0"}, wantErr: ErrPermissionDenied},
		{name: "group members by non member", username: lawrence, req: &Request{FolderID: folder.MembersFolder(groupID), Key: "0"}, wantErr: ErrPermissionDenied},
		{name: "group data by non member", username: lawrence, req: &Request{FolderID: folder.OnData(groupID, "s1"), Key: "0"}, wantErr: ErrPermissionDenied},
		{name: "missing conversation", username: romeo, req: &Request{FolderID: folder.OnConversation(romeo, lawrence), Key: "0"}, wantErr: ErrFolderNotFound},
		{name: "empty key", username: romeo, req: &Request{FolderID: folder.OnConversation(romeo, juliet)}, wantErr: ErrMalformedRequest},
		{name: "unknown folder", username: romeo, req: &Request{FolderID: "romeo", Key: "0"}, wantErr: ErrMalformedRequest},
		{name: "group members by member", username: juliet, req: &Request{FolderID: folder.MembersFolder(groupID), Key: "0"}},
		{name: "own group folder", username: juliet, req: &Request{FolderID: folder.OnGroup(juliet, groupID), Key: "0"}},
		{name: "missing alternative conversation", username: romeo, req: &Request{FolderID: folder.OnConversationAlt(romeo, lawrence), Key: "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.engine.Sync(ctx, tt.username, Current, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.FolderID, resp.FolderID)
		})
	}
}

func TestSync_RejectedClientChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	rj := folder.OnConversation(romeo, juliet)
	_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
	require.NoError(t, err)
	f.privacy.Block(juliet, romeo)

	sent := f.send(t, Current, romeo, rj,
		text(juliet, romeo, "spoofed", "x"),
		text(romeo, lawrence, "misrouted", "y"),
		text(romeo, juliet, "blocked", "z"),
	)

	assert.Empty(t, sent.ClientChanges)
	exists, err := f.mailbox.FolderExists(ctx, folder.OnConversation(juliet, romeo))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, f.notices.of(juliet))
}

func TestSync_Spans(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	rj := folder.OnConversation(romeo, juliet)
	jr := folder.OnConversation(juliet, romeo)
	_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
	require.NoError(t, err)

	part := func(id string, seq int, content string) *message.Meta {
		return &message.Meta{ID: id, From: romeo, To: juliet, Type: message.TypeAudio, Content: []byte(content), SpanID: "s1", SpanSequenceNo: seq, SpanLimit: 2}
	}
	sent := f.send(t, Current, romeo, rj, part("p1", 1, "a"), part("p2", 2, "b"))

	require.Len(t, sent.ClientChanges, 3)
	assert.Equal(t, message.TypeSubfolder, sent.ClientChanges[0].Type)
	assert.Equal(t, "s1", sent.ClientChanges[1].SpanID)
	assert.Equal(t, 2, sent.ClientChanges[1].SpanLimit)

	t.Run("full sync expands subfolder", func(t *testing.T) {
		resp, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: jr, Key: folder.BootstrapKey, IsFullSync: true, IsForward: true})
		require.NoError(t, err)
		require.Len(t, resp.ServerChanges, 3)
		assert.Equal(t, message.TypeSubfolder, resp.ServerChanges[0].Type)
		assert.Equal(t, folder.OnData(juliet, "s1"), string(resp.ServerChanges[0].Content))
		assert.Equal(t, []string{"a", "b"}, contents(resp.ServerChanges[1:]))
	})

	t.Run("sender full sync expands own subfolder", func(t *testing.T) {
		resp, err := f.engine.Sync(ctx, romeo, Current, &Request{FolderID: rj, Key: folder.BootstrapKey, IsFullSync: true, IsForward: true})
		require.NoError(t, err)
		require.Len(t, resp.ServerChanges, 3)
		assert.Equal(t, folder.OnData(romeo, "s1"), string(resp.ServerChanges[0].Content))
	})

	t.Run("legacy does not expand", func(t *testing.T) {
		resp, err := f.engine.Sync(ctx, juliet, Legacy, &Request{FolderID: jr, Key: folder.BootstrapKey, IsFullSync: true, IsForward: true})
		require.NoError(t, err)
		assert.Len(t, resp.ServerChanges, 1)
	})
}

func TestSync_Group(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	groupID, err := f.mailbox.CreateGroup(ctx, romeo, []string{juliet, lawrence})
	require.NoError(t, err)
	romeoFolder := folder.OnGroup(romeo, groupID)
	julietFolder := folder.OnGroup(juliet, groupID)

	sent := f.send(t, Current, romeo, romeoFolder, text(romeo, groupID, "g1", "hello"))
	require.Len(t, sent.ClientChanges, 1)
	assert.Equal(t, folder.ChildID(romeoFolder, score(1)), string(sent.ClientChanges[0].Content))

	t.Run("member receives folder relative id", func(t *testing.T) {
		resp, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: julietFolder, Key: folder.BootstrapKey})
		require.NoError(t, err)
		require.Len(t, resp.ServerChanges, 1)
		assert.Equal(t, folder.ChildID(julietFolder, score(1)), resp.ServerChanges[0].ID)
		assert.Equal(t, "hello", string(resp.ServerChanges[0].Content))
	})

	t.Run("legacy reads history", func(t *testing.T) {
		resp, err := f.engine.Sync(ctx, lawrence, Legacy, &Request{FolderID: folder.OnGroup(lawrence, groupID), Key: folder.BootstrapKey, IsFullSync: true})
		require.NoError(t, err)
		require.Len(t, resp.ServerChanges, 1)
		assert.Equal(t, folder.ChildID(folder.HistoryFolder(groupID), score(1)), resp.ServerChanges[0].ID)
	})

	t.Run("members notified except sender", func(t *testing.T) {
		assert.Empty(t, f.notices.of(romeo))
		require.Len(t, f.notices.of(juliet), 1)
		n := f.notices.of(juliet)[0]
		assert.Equal(t, julietFolder, n.Unread[0].FolderID)
		assert.Equal(t, 1, n.Unread[0].Num)
		assert.Equal(t, folder.ChildID(julietFolder, score(1)), n.Messages[0].ID)
	})

	t.Run("sender has no unread", func(t *testing.T) {
		n, err := f.mailbox.UnreadNumber(ctx, romeoFolder)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestSync_DeleteTombstones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	jr, err := f.mailbox.NewConversation(ctx, juliet, romeo)
	require.NoError(t, err)
	require.NoError(t, f.folders.AddChange(ctx, jr, folder.Removed("101240315")))

	legacy, err := f.engine.Sync(ctx, juliet, Legacy, &Request{FolderID: jr, Key: folder.BootstrapKey})
	require.NoError(t, err)
	require.Len(t, legacy.ServerChanges, 1)
	assert.Equal(t, &message.Meta{ID: folder.ChildID(jr, 101240315)}, legacy.ServerChanges[0])

	current, err := f.engine.Sync(ctx, juliet, Current, &Request{FolderID: jr, Key: folder.BootstrapKey})
	require.NoError(t, err)
	assert.Empty(t, current.ServerChanges)
}

func TestSync_Notices(t *testing.T) {
	ctx := context.Background()
	rj := folder.OnConversation(romeo, juliet)
	jr := folder.OnConversation(juliet, romeo)

	t.Run("current revision carries expect ack", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
		require.NoError(t, err)

		f.send(t, Current, romeo, rj, text(romeo, juliet, "a", "1"), text(romeo, juliet, "b", "2"))

		notices := f.notices.of(juliet)
		require.Len(t, notices, 2)
		assert.Empty(t, notices[0].ExpectAck)
		assert.Equal(t, []string{folder.ChildID(jr, score(1))}, notices[1].ExpectAck)
		assert.Equal(t, 2, notices[1].Unread[0].Num)
		assert.Equal(t, "2", string(notices[1].Messages[0].Content))
	})

	t.Run("legacy revision sends refined content", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
		require.NoError(t, err)

		f.send(t, Legacy, romeo, rj, &message.Meta{ID: "img", From: romeo, To: juliet, Type: message.TypeImage, Content: []byte("binary")})

		notices := f.notices.of(juliet)
		require.Len(t, notices, 1)
		unread := notices[0].Unread[0]
		assert.Equal(t, jr, unread.FolderID)
		assert.Equal(t, 1, unread.Num)
		assert.Equal(t, "image", string(unread.Content.Content))
		assert.Empty(t, notices[0].Messages)
	})

	t.Run("pool receives current notices", func(t *testing.T) {
		mb := mailbox.NewService(memory.NewFolderRepository(), memory.NewMessageRepository(), slog.Default(), &mailbox.ServiceConfig{Now: fixedNow})
		rec := newRecorder()
		pool := notice.NewPool(rec, slog.Default(), &notice.PoolConfig{Workers: 2})
		engine := NewService(mb, nil, pool, nil, slog.Default(), nil)
		_, err := mb.NewConversation(ctx, romeo, juliet)
		require.NoError(t, err)

		_, err = engine.Sync(ctx, romeo, Current, &Request{FolderID: rj, Key: folder.BootstrapKey, IsSendOnly: true, ClientChanges: []*message.Meta{text(romeo, juliet, "a", "1")}})
		require.NoError(t, err)
		require.NoError(t, pool.Close(ctx))

		assert.Len(t, rec.of(juliet), 1)
	})
}

func TestSync_Property(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	roster := folder.OnProperty(romeo, "roster")

	sent := f.send(t, Current, romeo, roster, &message.Meta{ID: "friar", From: romeo, To: "roster", Type: message.TypeProperty})
	assert.Empty(t, sent.ClientChanges)

	_, err := f.mailbox.StoreProperty(ctx, &message.Meta{ID: lawrence, From: romeo, To: "roster", Type: message.TypeProperty})
	require.NoError(t, err)

	resp, err := f.engine.Sync(ctx, romeo, Current, &Request{FolderID: roster, Key: folder.BootstrapKey})

	require.NoError(t, err)
	assert.True(t, resp.IsFullSync)
	assert.Equal(t, []*message.Meta{{ID: lawrence, Type: message.TypeProperty}}, resp.ServerChanges)
	assert.Equal(t, folder.EmptyKey(roster, true), resp.NextKey)
}

func TestSync_FullBootstrapClearsChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	rj := folder.OnConversation(romeo, juliet)
	jr := folder.OnConversation(juliet, romeo)
	_, err := f.mailbox.NewConversation(ctx, romeo, juliet)
	require.NoError(t, err)
	f.send(t, Current, romeo, rj, text(romeo, juliet, "a", "1"))

	_, err = f.engine.Sync(ctx, juliet, Current, &Request{FolderID: jr, Key: folder.BootstrapKey, IsFullSync: true})
	require.NoError(t, err)

	n, err := f.mailbox.UnreadNumber(ctx, jr)
	require.NoError(t, err)
	assert.Zero(t, n)
}
