package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCourierStatusSync = "courier.status_sync"

const TaskCourierDispatch = "courier.dispatch"

type CourierStatusSyncPayload struct {
	OrderID string `json:"orderId"`
}

type CourierDispatchPayload struct {
	OrderIDs []string `json:"orderIds"`
}

func NewCourierStatusSyncTask(payload CourierStatusSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCourierStatusSync, data), nil
}

func ParseCourierStatusSyncPayload(task *asynq.Task) (CourierStatusSyncPayload, error) {
	var payload CourierStatusSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CourierStatusSyncPayload{}, err
	}
	return payload, nil
}

func NewCourierDispatchTask(payload CourierDispatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCourierDispatch, data), nil
}

func ParseCourierDispatchPayload(task *asynq.Task) (CourierDispatchPayload, error) {
	var payload CourierDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CourierDispatchPayload{}, err
	}
	return payload, nil
}
