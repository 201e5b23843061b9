package sparql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TianLuoDiWang/internal/utils"
)

// ErrQueryTimeout 查询超过硬性时限
var ErrQueryTimeout = errors.New("查询执行超时")

// queryRunner 供执行器调度的查询引擎
type queryRunner interface {
	Execute(query string) (*Result, error)
}

// Executor 在独立goroutine上执行查询并施加硬性超时，
// 慢查询不会阻塞请求处理路径。超时后结果被丢弃——
// 引擎侧的工作不保证停止，只是尽力放弃。
type Executor struct {
	runner  queryRunner
	timeout time.Duration
	logger  *utils.Logger
}

func NewExecutor(runner queryRunner, timeout time.Duration) *Executor {
	return &Executor{
		runner:  runner,
		timeout: timeout,
		logger:  utils.NewLogger("sparql-executor"),
	}
}

type outcome struct {
	res *Result
	err error
}

// Execute 执行只读查询。超时返回 ErrQueryTimeout，执行失败原样上抛。
func (ex *Executor) Execute(ctx context.Context, query string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, ex.timeout)
	defer cancel()

	// 带缓冲，超时被放弃后goroutine仍可退出
	ch := make(chan outcome, 1)
	go func() {
		res, err := ex.runner.Execute(query)
		ch <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		// 区分调用方取消与时限到期，取消不算超时
		if errors.Is(ctx.Err(), context.Canceled) {
			ex.logger.Warn("查询被调用方取消")
			return nil, ctx.Err()
		}
		ex.logger.Error("查询超时（%s）", ex.timeout)
		return nil, fmt.Errorf("%w（时限 %s）", ErrQueryTimeout, ex.timeout)
	case o := <-ch:
		if o.err != nil {
			ex.logger.Error("查询执行失败: %v", o.err)
		}
		return o.res, o.err
	}
}
