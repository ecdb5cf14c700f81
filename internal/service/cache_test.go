package service

import (
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/logsight/internal/domain/model"
)

func TestInsightCache_AddGet(t *testing.T) {
	cache := NewInsightCache(4, time.Minute)

	fp := strings.Repeat("ab", 32)
	set := &model.InsightSet{ID: "set-1", FileFingerprint: fp}

	if _, ok := cache.Get(fp); ok {
		t.Error("Get() до Add() вернул попадание")
	}

	cache.Add(fp, set)

	got, ok := cache.Get(fp)
	if !ok {
		t.Fatal("Get() после Add() вернул промах")
	}
	if got != set {
		t.Errorf("Get() вернул другой набор: %v", got)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, ожидали 1", cache.Len())
	}
}

func TestInsightCache_TTLExpiry(t *testing.T) {
	cache := NewInsightCache(4, 20*time.Millisecond)

	fp := strings.Repeat("cd", 32)
	cache.Add(fp, &model.InsightSet{ID: "set-2", FileFingerprint: fp})

	if _, ok := cache.Get(fp); !ok {
		t.Fatal("Запись отсутствует сразу после Add()")
	}

	time.Sleep(50 * time.Millisecond)

	if _, ok := cache.Get(fp); ok {
		t.Error("Запись пережила TTL")
	}
}

func TestInsightCache_Eviction(t *testing.T) {
	cache := NewInsightCache(2, time.Minute)

	for _, id := range []string{"aa", "bb", "cc"} {
		fp := strings.Repeat(id, 32)
		cache.Add(fp, &model.InsightSet{ID: id, FileFingerprint: fp})
	}

	if cache.Len() != 2 {
		t.Errorf("Len() = %d, ожидали 2 (вытеснение старейшей записи)", cache.Len())
	}
	// Старейшая запись вытеснена
	if _, ok := cache.Get(strings.Repeat("aa", 32)); ok {
		t.Error("Старейшая запись не была вытеснена")
	}
	if _, ok := cache.Get(strings.Repeat("cc", 32)); !ok {
		t.Error("Свежая запись отсутствует")
	}
}
