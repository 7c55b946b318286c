package bot

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"docsum/internal/domain"
	"docsum/internal/extractor"
	"docsum/internal/markdown"
	"docsum/internal/pipeline"
	"docsum/internal/ratelimiter"
	"docsum/internal/summarizer"
)

type fakeAPI struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	edits    []tgbotapi.EditMessageTextConfig
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	stopped  bool
	fileURL  string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.messages = append(f.messages, m)
	case tgbotapi.EditMessageTextConfig:
		f.edits = append(f.edits, m)
	}

	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, c)

	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped = true
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return f.fileURL + "/" + fileID, nil
}

func (f *fakeAPI) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var texts []string
	for _, m := range f.messages {
		texts = append(texts, m.Text)
	}
	return texts
}

func (f *fakeAPI) callbackAnswers() []tgbotapi.CallbackConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var answers []tgbotapi.CallbackConfig
	for _, r := range f.requests {
		if c, ok := r.(tgbotapi.CallbackConfig); ok {
			answers = append(answers, c)
		}
	}
	return answers
}

type stubSummarizer struct {
	mu     sync.Mutex
	output string
	inputs []summarizer.Input
}

func (s *stubSummarizer) Summarize(_ context.Context, input summarizer.Input) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inputs = append(s.inputs, input)

	return s.output, nil
}

type testBot struct {
	*Bot
	api  *fakeAPI
	stub *stubSummarizer
}

func newTestBot(t *testing.T, allowedUsers []int64, files map[string][]byte) *testBot {
	t.Helper()

	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := files[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(fileServer.Close)

	log := slog.Default()
	api := &fakeAPI{fileURL: fileServer.URL, updates: make(chan tgbotapi.Update)}
	stub := &stubSummarizer{output: "Greets the world. Nothing else."}

	rl := ratelimiter.NewWithRates(api, 0, 0, log)
	t.Cleanup(rl.Stop)

	b := newBot(api, rl, pipeline.New(stub, time.Minute, log), allowedUsers, 1024, log)

	return &testBot{Bot: b, api: api, stub: stub}
}

func messageUpdate(userID, chatID int64, text string) *tgbotapi.Update {
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: chatID, Type: "private"},
		Text:      text,
	}}
}

func documentUpdate(userID, chatID int64, doc tgbotapi.Document, caption string) *tgbotapi.Update {
	u := messageUpdate(userID, chatID, "")
	u.Message.Document = &doc
	u.Message.Caption = caption
	return u
}

func TestStartCommand(t *testing.T) {
	b := newTestBot(t, nil, nil)

	b.handleUpdate(context.Background(), messageUpdate(7, 7, "/start"))

	if texts := b.api.sentTexts(); len(texts) != 1 || texts[0] != welcomeText {
		t.Fatalf("expected welcome text, got %q", texts)
	}
	if b.api.messages[0].ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Fatalf("expected MarkdownV2, got %q", b.api.messages[0].ParseMode)
	}
}

func TestPlainTextGetsUsage(t *testing.T) {
	b := newTestBot(t, nil, nil)

	b.handleUpdate(context.Background(), messageUpdate(7, 7, "hello?"))

	if texts := b.api.sentTexts(); len(texts) != 1 || texts[0] != usageText {
		t.Fatalf("expected usage text, got %q", texts)
	}
}

func TestDocumentIsSummarized(t *testing.T) {
	b := newTestBot(t, nil, map[string][]byte{"f1": []byte("Hello world.")})

	b.handleUpdate(context.Background(), documentUpdate(7, 7, tgbotapi.Document{
		FileID:   "f1",
		FileName: "notes.txt",
		MimeType: extractor.MediaTypeText,
		FileSize: 12,
	}, " executive "))

	if len(b.stub.inputs) != 1 {
		t.Fatalf("expected one generation call, got %d", len(b.stub.inputs))
	}
	if in := b.stub.inputs[0]; in.Text != "Hello world." || in.Type != domain.SummaryTypeExecutive {
		t.Fatalf("unexpected generation input: %+v", in)
	}

	texts := b.api.sentTexts()
	if len(texts) != 1 {
		t.Fatalf("expected one reply, got %q", texts)
	}
	if !strings.HasPrefix(texts[0], "*notes*\n") || !strings.Contains(texts[0], `Greets the world\. Nothing else\.`) {
		t.Fatalf("unexpected reply: %q", texts[0])
	}
}

func TestDocumentRejections(t *testing.T) {
	b := newTestBot(t, nil, map[string][]byte{
		"blank": []byte("   "),
		"big":   []byte(strings.Repeat("x", 2048)),
	})
	ctx := context.Background()

	b.handleUpdate(ctx, documentUpdate(7, 7, tgbotapi.Document{FileID: "f", FileName: "a.html", MimeType: "text/html"}, ""))
	b.handleUpdate(ctx, documentUpdate(7, 7, tgbotapi.Document{FileID: "f", FileName: "a.txt", MimeType: extractor.MediaTypeText, FileSize: 4096}, ""))
	b.handleUpdate(ctx, documentUpdate(7, 7, tgbotapi.Document{FileID: "big", FileName: "b.txt", MimeType: extractor.MediaTypeText}, ""))
	b.handleUpdate(ctx, documentUpdate(7, 7, tgbotapi.Document{FileID: "blank", FileName: "c.txt", MimeType: extractor.MediaTypeText}, ""))
	b.handleUpdate(ctx, documentUpdate(7, 7, tgbotapi.Document{FileID: "missing", FileName: "d.txt", MimeType: extractor.MediaTypeText}, ""))

	want := []string{unsupportedText, tooLargeText, tooLargeText, noTextText, failedText}
	got := b.api.sentTexts()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected replies:\ngot  %q\nwant %q", got, want)
	}

	if len(b.stub.inputs) != 0 {
		t.Fatalf("expected no generation calls, got %d", len(b.stub.inputs))
	}
}

func TestDisallowedUserIsIgnored(t *testing.T) {
	b := newTestBot(t, []int64{1, 2}, nil)

	b.handleUpdate(context.Background(), messageUpdate(7, 7, "/start"))

	if texts := b.api.sentTexts(); len(texts) != 0 {
		t.Fatalf("expected no replies, got %q", texts)
	}

	b.handleUpdate(context.Background(), messageUpdate(2, 2, "/start"))

	if texts := b.api.sentTexts(); len(texts) != 1 {
		t.Fatalf("expected allowed user to get a reply, got %q", texts)
	}
}

func TestStyleSelection(t *testing.T) {
	b := newTestBot(t, nil, map[string][]byte{"f1": []byte("Hello world.")})
	ctx := context.Background()

	b.handleUpdate(ctx, messageUpdate(7, 7, "/style"))
	if len(b.api.messages) != 1 || b.api.messages[0].ReplyMarkup == nil {
		t.Fatalf("expected style keyboard, got %+v", b.api.messages)
	}

	b.handleUpdate(ctx, &tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 7}},
		Data:    styleCallbackPrefix + string(domain.SummaryTypeTechnical),
	}})

	if len(b.api.edits) != 1 || !strings.Contains(b.api.edits[0].Text, "Technical") {
		t.Fatalf("expected style message to be edited, got %+v", b.api.edits)
	}
	if answers := b.api.callbackAnswers(); len(answers) != 1 || answers[0].CallbackQueryID != "cb1" {
		t.Fatalf("expected callback answer, got %+v", answers)
	}

	b.handleUpdate(ctx, documentUpdate(7, 7, tgbotapi.Document{
		FileID:   "f1",
		FileName: "notes.txt",
		MimeType: extractor.MediaTypeText,
	}, ""))

	if len(b.stub.inputs) != 1 || b.stub.inputs[0].Type != domain.SummaryTypeTechnical {
		t.Fatalf("expected chat style to apply, got %+v", b.stub.inputs)
	}

	if got := b.chatStyle(8); got != domain.SummaryTypeStandard {
		t.Fatalf("expected other chats to keep STANDARD, got %s", got)
	}
}

func TestLongSummaryIsSplit(t *testing.T) {
	b := newTestBot(t, nil, map[string][]byte{"f1": []byte("Hello world.")})
	b.stub.output = strings.Repeat("Sentence number one. ", 600)

	b.handleUpdate(context.Background(), documentUpdate(7, 7, tgbotapi.Document{
		FileID:   "f1",
		FileName: "notes.txt",
		MimeType: extractor.MediaTypeText,
	}, ""))

	texts := b.api.sentTexts()
	if len(texts) < 3 {
		t.Fatalf("expected the reply to be split, got %d parts", len(texts))
	}

	for _, text := range texts {
		if utf8.RuneCountInString(text) > markdown.MaxMessageLength {
			t.Fatalf("part exceeds limit: %d runes", utf8.RuneCountInString(text))
		}
	}
}

func TestStartStopsWithContext(t *testing.T) {
	b := newTestBot(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		b.Start(ctx)
		close(done)
	}()

	b.api.updates <- *messageUpdate(7, 7, "/start")

	deadline := time.Now().Add(2 * time.Second)
	for len(b.api.sentTexts()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected Start to return after cancellation")
	}

	if texts := b.api.sentTexts(); len(texts) != 1 {
		t.Fatalf("expected the update to be handled, got %q", texts)
	}
}

func TestUpdateBackoffSeconds(t *testing.T) {
	cases := map[int]int{3: 6, 6: 12, 48: 60, 60: 60}

	for in, want := range cases {
		if got := updateBackoffSeconds(in); got != want {
			t.Fatalf("updateBackoffSeconds(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	got := formatSummary(domain.Summary{
		Title:       "Q3 report",
		Content:     "Revenue grew 12%.",
		SummaryType: domain.SummaryTypeExecutive,
		WordCount:   3,
	})

	want := "*Q3 report*\n_💼 Executive, 3 words_\n\nRevenue grew 12%\\."
	if got != want {
		t.Fatalf("unexpected formatting:\ngot  %q\nwant %q", got, want)
	}
}
