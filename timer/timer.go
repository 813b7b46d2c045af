// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Task is a one-shot deferred callback. Tasks are never cancelled through a
// handle; callbacks re-validate their precondition at fire time, so a fired
// task whose condition has lapsed is a no-op by construction.
type Task struct {
	id     int64
	fireAt time.Time
	run    func()
	index  int
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].fireAt.Before(q[j].fireAt)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*Task)
	task.index = n
	*q = append(*q, task)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// Scheduler drains due tasks off a min-heap on a coarse tick and runs each
// callback in its own goroutine.
type Scheduler struct {
	queue    taskQueue
	mutex    sync.Mutex
	nextID   int64
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewScheduler() *Scheduler {
	s := &Scheduler{
		queue:    make(taskQueue, 0),
		stopChan: make(chan struct{}),
		nextID:   1,
	}
	heap.Init(&s.queue)
	go s.process()
	return s
}

// After schedules callback to run once after delay.
func (s *Scheduler) After(delay time.Duration, callback func()) int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task := &Task{
		id:     s.nextID,
		fireAt: time.Now().Add(delay),
		run:    callback,
	}
	s.nextID++

	heap.Push(&s.queue, task)
	return task.id
}

// Pending returns the number of tasks not yet fired.
func (s *Scheduler) Pending() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.queue.Len()
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Scheduler) process() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()

			s.mutex.Lock()
			var due []*Task
			for s.queue.Len() > 0 {
				task := s.queue[0]
				if task.fireAt.After(now) {
					break
				}
				heap.Pop(&s.queue)
				due = append(due, task)
			}
			s.mutex.Unlock()

			for _, task := range due {
				go task.run()
			}

		case <-s.stopChan:
			return
		}
	}
}
