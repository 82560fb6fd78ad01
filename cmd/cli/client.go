package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/and161185/flashcards/internal/convert"
)

type apiClient struct {
	base  string
	token string
	hc    *http.Client
}

// apiError is a failed action as reported by the server.
type apiError struct {
	Status int
	Result convert.Result
}

func (e *apiError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (HTTP %d)", e.Result.Error, e.Status)
	for _, d := range e.Result.Details {
		fmt.Fprintf(&b, "\n  %s: %s", d.Field, d.Message)
	}
	return b.String()
}

func (c *apiClient) call(ctx context.Context, method, path string, body any) (convert.Result, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return convert.Result{}, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.base, "/")+path, rd)
	if err != nil {
		return convert.Result{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return convert.Result{}, err
	}
	defer resp.Body.Close()

	var res convert.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return convert.Result{}, fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !res.Success {
		return res, &apiError{Status: resp.StatusCode, Result: res}
	}
	return res, nil
}

func (c *apiClient) createDeck(ctx context.Context, name, desc string) (convert.Result, error) {
	return c.call(ctx, http.MethodPost, "/api/decks", map[string]any{"name": name, "description": desc})
}

func (c *apiClient) updateDeck(ctx context.Context, id int64, name, desc string) (convert.Result, error) {
	return c.call(ctx, http.MethodPut, fmt.Sprintf("/api/decks/%d", id), map[string]any{"name": name, "description": desc})
}

func (c *apiClient) deleteDeck(ctx context.Context, id int64) (convert.Result, error) {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/decks/%d", id), nil)
}

func (c *apiClient) createCard(ctx context.Context, deckID int64, front, back string) (convert.Result, error) {
	return c.call(ctx, http.MethodPost, "/api/cards", map[string]any{"deckId": deckID, "front": front, "back": back})
}

func (c *apiClient) updateCard(ctx context.Context, id int64, front, back string) (convert.Result, error) {
	return c.call(ctx, http.MethodPut, fmt.Sprintf("/api/cards/%d", id), map[string]any{"front": front, "back": back})
}

func (c *apiClient) deleteCard(ctx context.Context, id int64) (convert.Result, error) {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/cards/%d", id), nil)
}

type cardPair struct{ Front, Back string }

// parseTSV reads "front<TAB>back" lines. Blank lines and lines starting with # are skipped.
func parseTSV(r io.Reader) ([]cardPair, error) {
	var out []cardPair
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		front, back, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: want front<TAB>back", line)
		}
		out = append(out, cardPair{Front: front, Back: back})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no cards in input")
	}
	return out, nil
}

// importCards creates every pair in order and stops at the first failure.
func (c *apiClient) importCards(ctx context.Context, deckID int64, pairs []cardPair) (int, error) {
	for i, p := range pairs {
		if _, err := c.createCard(ctx, deckID, p.Front, p.Back); err != nil {
			return i, fmt.Errorf("card %d: %w", i+1, err)
		}
	}
	return len(pairs), nil
}
