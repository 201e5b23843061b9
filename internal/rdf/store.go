package rdf

import (
	"database/sql"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"TianLuoDiWang/internal/model"
	"TianLuoDiWang/internal/utils"
)

// StoreStatus 入库结果状态
type StoreStatus int

const (
	StatusInserted    StoreStatus = iota // 新记录，已插入
	StatusSkipped                        // 标识符已存在，跳过
	StatusUnavailable                    // 存储不可用，按0条处理
)

// StoreResult 单条漏洞的入库结果
type StoreResult struct {
	Status   StoreStatus
	Inserted int // 插入的三元组数量
}

const lockShards = 64

// Store 持久化三元组存储，进程启动时打开一次，关闭时落盘。
// 查询与写入可并发；同一标识符的查重+插入由分片锁串行化。
type Store struct {
	db     *sql.DB
	path   string
	proj   *Projector
	logger *utils.Logger
	locks  [lockShards]sync.Mutex
}

// OpenStore 打开存储目录（不存在则创建）下的三元组库
func OpenStore(dir, graphBase string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}

	dbPath := filepath.Join(dir, "triples.db")
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("打开三元组库失败: %w", err)
	}

	s := &Store{
		db:     db,
		path:   dbPath,
		proj:   NewProjector(graphBase),
		logger: utils.NewLogger("rdf-store"),
	}

	if err := s.initTables(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("三元组存储已就绪: %s", dbPath)
	return s, nil
}

func (s *Store) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS triples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject TEXT NOT NULL,
		predicate TEXT NOT NULL,
		object TEXT NOT NULL,
		literal INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(subject, predicate, object)
	);

	CREATE INDEX IF NOT EXISTS idx_triples_subject ON triples(subject);
	CREATE INDEX IF NOT EXISTS idx_triples_pred_obj ON triples(predicate, object);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Projector 返回该存储绑定的投影器
func (s *Store) Projector() *Projector {
	return s.proj
}

func (s *Store) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockShards]
}

// StoreVulnerability 查重后入库。标识符已存在时跳过（幂等，不做合并更新）；
// 存储不可用或故障时返回 StatusUnavailable 并记录原因，不向上抛错，
// 避免单条失败中断整批摄取。
func (s *Store) StoreVulnerability(v model.Vulnerability) StoreResult {
	if s == nil || s.db == nil {
		utils.NewLogger("rdf-store").Warn("存储不可用，跳过 %s", v.ID)
		return StoreResult{Status: StatusUnavailable}
	}

	// 同一标识符的查重+插入必须互斥，否则并发摄取会重复入库
	mu := s.lockFor(v.ID)
	mu.Lock()
	defer mu.Unlock()

	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM triples WHERE predicate = ? AND object = ? AND literal = 1 LIMIT 1`,
		PredCVEID, v.ID,
	).Scan(&one)
	if err == nil {
		s.logger.Debug("漏洞 %s 已存在，跳过", v.ID)
		return StoreResult{Status: StatusSkipped}
	}
	if err != sql.ErrNoRows {
		s.logger.Error("查重失败 %s: %v", v.ID, err)
		return StoreResult{Status: StatusUnavailable}
	}

	triples := s.proj.VulnerabilityToTriples(v)

	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error("开启事务失败 %s: %v", v.ID, err)
		return StoreResult{Status: StatusUnavailable}
	}
	defer tx.Rollback()

	for _, t := range triples {
		lit := 0
		if t.Literal {
			lit = 1
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO triples (subject, predicate, object, literal) VALUES (?, ?, ?, ?)`,
			t.Subject, t.Predicate, t.Object, lit,
		); err != nil {
			s.logger.Error("插入三元组失败 %s: %v", v.ID, err)
			return StoreResult{Status: StatusUnavailable}
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("提交事务失败 %s: %v", v.ID, err)
		return StoreResult{Status: StatusUnavailable}
	}

	s.logger.Debug("漏洞 %s 入库 %d 条三元组", v.ID, len(triples))
	return StoreResult{Status: StatusInserted, Inserted: len(triples)}
}

// MatchPattern 按模式匹配三元组，nil表示该位置不限。
// objectLiteral 限定宾语的性质：同文本的字面量与节点URI不互相匹配。
func (s *Store) MatchPattern(subject, predicate, object *string, objectLiteral *bool) ([]Triple, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("三元组存储不可用")
	}

	query := `SELECT subject, predicate, object, literal FROM triples WHERE 1=1`
	var args []interface{}
	if subject != nil {
		query += ` AND subject = ?`
		args = append(args, *subject)
	}
	if predicate != nil {
		query += ` AND predicate = ?`
		args = append(args, *predicate)
	}
	if object != nil {
		query += ` AND object = ?`
		args = append(args, *object)
	}
	if objectLiteral != nil {
		lit := 0
		if *objectLiteral {
			lit = 1
		}
		query += ` AND literal = ?`
		args = append(args, lit)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Triple
	for rows.Next() {
		var t Triple
		var lit int
		if err := rows.Scan(&t.Subject, &t.Predicate, &t.Object, &lit); err != nil {
			continue
		}
		t.Literal = lit == 1
		result = append(result, t)
	}

	return result, rows.Err()
}

// TripleCount 三元组总数
func (s *Store) TripleCount() (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("三元组存储不可用")
	}

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM triples`).Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.logger.Info("关闭三元组存储")
	err := s.db.Close()
	s.db = nil
	return err
}
