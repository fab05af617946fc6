package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const ttsRequestTimeout = 10 * time.Second

// PromptCache prepares spoken word prompts as MP3 files. Prompts are
// fetched from Google Translate's free TTS endpoint and cached on disk,
// so repeated corrections of the same word never refetch.
type PromptCache struct {
	dir    string
	client *http.Client
}

// NewPromptCache creates a cache rooted at dir. The directory must exist.
func NewPromptCache(dir string) *PromptCache {
	return &PromptCache{
		dir:    dir,
		client: &http.Client{Timeout: ttsRequestTimeout},
	}
}

// Prompt returns the path of the MP3 prompt for a word, generating it on
// first use.
func (c *PromptCache) Prompt(ctx context.Context, word string) (string, error) {
	path := filepath.Join(c.dir, promptFilename(word))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := c.fetch(ctx, word, path); err != nil {
		return "", fmt.Errorf("failed to generate prompt for %q: %w", word, err)
	}
	return path, nil
}

// Warm pre-generates prompts for a batch of words, typically the warmup
// queue, so correction rounds never wait on the network. The first
// failure aborts the batch.
func (c *PromptCache) Warm(ctx context.Context, words []string) error {
	for _, word := range words {
		if _, err := c.Prompt(ctx, word); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes a cached prompt. Removing a prompt that was never
// generated is not an error.
func (c *PromptCache) Remove(word string) error {
	path := filepath.Join(c.dir, promptFilename(word))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path)
}

// CachedWords lists the MP3 prompts currently on disk.
func (c *PromptCache) CachedWords() ([]string, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt directory: %w", err)
	}

	var prompts []string
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".mp3" {
			prompts = append(prompts, file.Name())
		}
	}
	return prompts, nil
}

func promptFilename(word string) string {
	sanitized := strings.ToLower(strings.TrimSpace(word))
	sanitized = strings.ReplaceAll(sanitized, " ", "_")
	return fmt.Sprintf("prompt_%s.mp3", sanitized)
}

// fetch downloads one prompt from Google Translate's TTS endpoint. No
// API key is needed, but the endpoint insists on a browser user agent.
func (c *PromptCache) fetch(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	fullURL := "https://translate.google.com/translate_tts?" + params.Encode()

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return nil
}
