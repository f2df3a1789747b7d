package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AaronDeluna/new-york-times/internal/model"

	"github.com/dgraph-io/badger/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	indexKey = "articles:index"
	seqKey   = "articles:seq"
)

// raiseSeq moves the number sequence up to ARGV[1] if it is behind, so an
// explicitly numbered article is never handed out again by INCR.
var raiseSeq = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local number = tonumber(ARGV[1])
if number > current then
	redis.call('SET', KEYS[1], ARGV[1])
end
return 0
`)

// setIfExists overwrites KEYS[1] with ARGV[1] only when the key exists.
var setIfExists = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// articleMeta is the part of an article kept in Redis.
type articleMeta struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// HybridStore keeps metadata, the number index and the number sequence in
// Redis and the article text in Badger.
type HybridStore struct {
	rdb      *redis.Client
	db       *badger.DB
	inMemory bool
}

var _ Store = (*HybridStore)(nil)

// NewHybridStore connects to Redis and opens Badger.
// Pass badgerPath="" to keep the text in an in-memory Badger.
func NewHybridStore(redisAddr string, badgerPath string) (*HybridStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	opts := badger.DefaultOptions(badgerPath)
	if badgerPath == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Silence default logger
	db, err := badger.Open(opts)
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return &HybridStore{rdb: rdb, db: db, inMemory: badgerPath == ""}, nil
}

// Close cleans up connections
func (s *HybridStore) Close() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// RunGC reclaims Badger value log space every interval until ctx is done.
func (s *HybridStore) RunGC(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if s.inMemory {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(0.7)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logger.Warn("Badger value log GC failed", zap.Error(err))
			}
		}
	}
}

func articleKey(number int) string {
	return fmt.Sprintf("article:%d", number)
}

func textKey(number int) []byte {
	return []byte("text:" + strconv.Itoa(number))
}

// Put writes the text to Badger first, then makes the article visible by
// writing its metadata and index entry to Redis.
func (s *HybridStore) Put(ctx context.Context, article *model.Article) error {
	if article.Number < 0 {
		return fmt.Errorf("invalid article number %d", article.Number)
	}

	if article.Number == 0 {
		next, err := s.rdb.Incr(ctx, seqKey).Result()
		if err != nil {
			return fmt.Errorf("assign article number: %w", err)
		}
		article.Number = int(next)
	} else if err := raiseSeq.Run(ctx, s.rdb, []string{seqKey}, article.Number).Err(); err != nil {
		return fmt.Errorf("advance article sequence: %w", err)
	}

	data, err := marshalMeta(article)
	if err != nil {
		return err
	}
	if err := s.writeText(article); err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, articleKey(article.Number), data, 0)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(article.Number), Member: strconv.Itoa(article.Number)})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save article metadata: %w", err)
	}
	return nil
}

// Replace overwrites an existing article. The text goes to Badger first; the
// metadata write is conditional on the article still existing in Redis. If it
// was deleted meanwhile, the text just written is removed again.
func (s *HybridStore) Replace(ctx context.Context, article *model.Article) (bool, error) {
	if article.Number <= 0 {
		return false, nil
	}
	exists, err := s.rdb.Exists(ctx, articleKey(article.Number)).Result()
	if err != nil {
		return false, fmt.Errorf("check article %d: %w", article.Number, err)
	}
	if exists == 0 {
		return false, nil
	}

	data, err := marshalMeta(article)
	if err != nil {
		return false, err
	}
	if err := s.writeText(article); err != nil {
		return false, err
	}

	replaced, err := setIfExists.Run(ctx, s.rdb, []string{articleKey(article.Number)}, data).Int()
	if err != nil {
		return false, fmt.Errorf("save article metadata: %w", err)
	}
	if replaced == 0 {
		if err := s.deleteText(article.Number); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func marshalMeta(article *model.Article) ([]byte, error) {
	return json.Marshal(articleMeta{
		Number: article.Number,
		Title:  article.Title,
		Author: article.Author,
	})
}

func (s *HybridStore) writeText(article *model.Article) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(textKey(article.Number), []byte(article.Text))
	})
	if err != nil {
		return fmt.Errorf("save article text: %w", err)
	}
	return nil
}

func (s *HybridStore) deleteText(number int) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(textKey(number))
	})
	if err != nil {
		return fmt.Errorf("delete article text: %w", err)
	}
	return nil
}

// Get combines data: Metadata from Redis + Text from Badger
func (s *HybridStore) Get(ctx context.Context, number int) (*model.Article, error) {
	val, err := s.rdb.Get(ctx, articleKey(number)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var meta articleMeta
	if err := json.Unmarshal(val, &meta); err != nil {
		return nil, err
	}
	article := model.Article{Number: meta.Number, Title: meta.Title, Author: meta.Author}

	// Text is written before metadata and deleted after it, so a missing
	// text means a Delete landed after the Redis read.
	err = s.db.View(func(txn *badger.Txn) error {
		text, err := readText(txn, number)
		article.Text = text
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// Delete removes metadata and index entry first so the article disappears
// atomically for readers, then drops the text.
func (s *HybridStore) Delete(ctx context.Context, number int) (bool, error) {
	pipe := s.rdb.TxPipeline()
	del := pipe.Del(ctx, articleKey(number))
	pipe.ZRem(ctx, indexKey, strconv.Itoa(number))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("delete article metadata: %w", err)
	}
	if del.Val() == 0 {
		return false, nil
	}

	if err := s.deleteText(number); err != nil {
		return true, err
	}
	return true, nil
}

// ListAll reads every indexed article; entries deleted while it runs are
// skipped.
func (s *HybridStore) ListAll(ctx context.Context) ([]model.Article, error) {
	ids, err := s.rdb.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Article{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "article:" + id
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	articles := make([]model.Article, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var meta articleMeta
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return nil, err
		}
		articles = append(articles, model.Article{Number: meta.Number, Title: meta.Title, Author: meta.Author})
	}

	live := articles[:0]
	err = s.db.View(func(txn *badger.Txn) error {
		for _, a := range articles {
			text, err := readText(txn, a.Number)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			a.Text = text
			live = append(live, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return live, nil
}

func readText(txn *badger.Txn, number int) (string, error) {
	item, err := txn.Get(textKey(number))
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}
