// Package stats собирает показатели процесса симулятора для статуса и API.
package stats

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats считает время работы и потребление ресурсов процессом
type ProcessStats struct {
	StartTime time.Time

	once sync.Once
	proc *process.Process
	err  error
}

// Snapshot: показатели процесса на момент запроса
type Snapshot struct {
	Uptime     string  `json:"uptime"`
	UptimeSec  float64 `json:"uptime_seconds"`
	MemoryMB   float64 `json:"memory_mb"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
	NumGC      uint32  `json:"num_gc"`
}

// NewProcessStats создает счётчик с отсчётом от текущего момента
func NewProcessStats() *ProcessStats {
	return &ProcessStats{
		StartTime: time.Now(),
	}
}

// GetUptime возвращает время работы в человекочитаемом виде
func (ps *ProcessStats) GetUptime() string {
	return FormatUptime(time.Since(ps.StartTime))
}

// FormatUptime форматирует длительность как "1д 2ч 3м 4с", опуская старшие нули
func FormatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	}
	return fmt.Sprintf("%dс", seconds)
}

// GetMemoryUsage возвращает занятую кучу в MB
func (ps *ProcessStats) GetMemoryUsage() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// Преобразуем байты в мегабайты
	return float64(m.Alloc) / 1024 / 1024
}

// GetCPUUsage возвращает использование CPU процессом в процентах.
// Если метрика процесса недоступна, возвращает системную.
func (ps *ProcessStats) GetCPUUsage() (float64, error) {
	ps.once.Do(func() {
		ps.proc, ps.err = process.NewProcess(int32(os.Getpid()))
	})

	if ps.err == nil {
		if cpuPercent, err := ps.proc.CPUPercent(); err == nil {
			return cpuPercent, nil
		}
	}

	cpuPercents, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		return 0, err
	}
	if len(cpuPercents) == 0 {
		return 0, fmt.Errorf("нет данных о загрузке CPU")
	}
	return cpuPercents[0], nil
}

// Snapshot собирает все показатели. Ошибка CPU не прерывает сбор: процент остаётся 0.
func (ps *ProcessStats) Snapshot() Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(ps.StartTime)
	cpuPercent, _ := ps.GetCPUUsage()

	return Snapshot{
		Uptime:     FormatUptime(uptime),
		UptimeSec:  uptime.Seconds(),
		MemoryMB:   float64(m.Alloc) / 1024 / 1024,
		CPUPercent: cpuPercent,
		Goroutines: runtime.NumGoroutine(),
		NumGC:      m.NumGC,
	}
}
