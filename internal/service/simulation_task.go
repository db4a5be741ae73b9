package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stock-advisor-backend/internal/model"
)

// 任务状态
const (
	SimTaskStatusPending  = "pending"
	SimTaskStatusRunning  = "running"
	SimTaskStatusDone     = "done"
	SimTaskStatusFailed   = "failed"
	SimTaskStatusCanceled = "canceled"
)

// ErrTaskNotFound 任务不存在或已过期
var ErrTaskNotFound = errors.New("task not found")

// simulationTask 异步模拟任务
type simulationTask struct {
	id        string
	requestID string
	status    string
	errMsg    string
	result    *model.SimulationResponse
	cancel    context.CancelFunc
	createdAt time.Time
	expiresAt time.Time
}

var (
	simTaskMu     sync.Mutex
	simTasks      = make(map[string]*simulationTask)
	simRequestMap = make(map[string]string) // requestID -> taskID，幂等去重
	simTaskSem    = make(chan struct{}, 3)  // 最多3个模拟并发
)

// simTaskTTL 任务结果保留时间
const simTaskTTL = 30 * time.Minute

// CreateSimulationTask 创建异步模拟任务。
// requestID 非空时做幂等去重：同一requestID在TTL内重复提交返回原任务。
// 返回 (状态, 是否新建, 错误)。
func CreateSimulationTask(req *model.SimulationRequest, requestID string) (model.SimulationTaskStatus, bool, error) {
	if req == nil || len(req.Stocks) == 0 {
		return model.SimulationTaskStatus{}, false, errors.New("no stocks provided")
	}
	requestID = strings.TrimSpace(requestID)
	now := time.Now()

	simTaskMu.Lock()
	cleanupExpiredSimTasksLocked(now)
	if requestID != "" {
		if existingID, ok := simRequestMap[requestID]; ok {
			if existing, ok := simTasks[existingID]; ok && now.Before(existing.expiresAt) {
				status := buildSimTaskStatus(existing)
				simTaskMu.Unlock()
				return status, false, nil
			}
			delete(simRequestMap, requestID)
		}
	}
	simTaskMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	task := &simulationTask{
		id:        uuid.NewString(),
		requestID: requestID,
		status:    SimTaskStatusPending,
		cancel:    cancel,
		createdAt: now,
		expiresAt: now.Add(simTaskTTL),
	}

	simTaskMu.Lock()
	simTasks[task.id] = task
	if requestID != "" {
		simRequestMap[requestID] = task.id
	}
	status := buildSimTaskStatus(task)
	simTaskMu.Unlock()

	go runSimulationTask(ctx, task, req)

	return status, true, nil
}

// GetSimulationTask 查询任务状态
func GetSimulationTask(taskID string) (model.SimulationTaskStatus, error) {
	now := time.Now()

	simTaskMu.Lock()
	defer simTaskMu.Unlock()
	cleanupExpiredSimTasksLocked(now)

	task, ok := simTasks[taskID]
	if !ok || now.After(task.expiresAt) {
		return model.SimulationTaskStatus{}, ErrTaskNotFound
	}
	return buildSimTaskStatus(task), nil
}

// CancelSimulationTask 取消任务。对已结束的任务返回当前状态，不报错。
func CancelSimulationTask(taskID string) (model.SimulationTaskStatus, error) {
	now := time.Now()

	simTaskMu.Lock()
	defer simTaskMu.Unlock()
	cleanupExpiredSimTasksLocked(now)

	task, ok := simTasks[taskID]
	if !ok || now.After(task.expiresAt) {
		return model.SimulationTaskStatus{}, ErrTaskNotFound
	}
	if task.status == SimTaskStatusPending || task.status == SimTaskStatusRunning {
		task.status = SimTaskStatusCanceled
		task.errMsg = "task canceled"
		task.cancel()
		if task.requestID != "" {
			delete(simRequestMap, task.requestID)
		}
	}
	return buildSimTaskStatus(task), nil
}

// runSimulationTask 执行模拟任务，受信号量限制并发
func runSimulationTask(ctx context.Context, task *simulationTask, req *model.SimulationRequest) {
	defer task.cancel()

	simTaskSem <- struct{}{}
	defer func() { <-simTaskSem }()

	simTaskMu.Lock()
	if task.status != SimTaskStatusPending {
		simTaskMu.Unlock()
		return
	}
	task.status = SimTaskStatusRunning
	simTaskMu.Unlock()

	result, err := Simulate(ctx, req)

	simTaskMu.Lock()
	defer simTaskMu.Unlock()
	if task.status == SimTaskStatusCanceled {
		return
	}
	if err != nil {
		task.status = SimTaskStatusFailed
		task.errMsg = err.Error()
		return
	}
	task.status = SimTaskStatusDone
	task.result = SimulationResponseFrom(result)
	if task.requestID != "" {
		delete(simRequestMap, task.requestID)
	}
}

// cleanupExpiredSimTasksLocked 清理过期任务，调用方需持有simTaskMu
func cleanupExpiredSimTasksLocked(now time.Time) {
	for id, task := range simTasks {
		if now.After(task.expiresAt) {
			if task.status == SimTaskStatusPending || task.status == SimTaskStatusRunning {
				task.cancel()
			}
			delete(simTasks, id)
			if task.requestID != "" {
				if mapped, ok := simRequestMap[task.requestID]; ok && mapped == id {
					delete(simRequestMap, task.requestID)
				}
			}
		}
	}
}

func buildSimTaskStatus(task *simulationTask) model.SimulationTaskStatus {
	status := model.SimulationTaskStatus{
		TaskID:    task.id,
		Status:    task.status,
		Error:     task.errMsg,
		ExpiresAt: task.expiresAt,
	}
	if task.status == SimTaskStatusDone {
		status.Result = task.result
	}
	return status
}
