package voxel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile: формат YAML-каталога типов вокселей
type catalogFile struct {
	Kinds []KindInfo `yaml:"kinds"`
}

// LoadCatalog читает YAML-файл с описаниями типов и регистрирует их.
// Существующие типы с тем же ID перезаписываются.
func LoadCatalog(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения каталога %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog разбирает YAML-каталог и регистрирует типы. Возвращает число типов.
func ParseCatalog(data []byte) (int, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("ошибка разбора каталога: %w", err)
	}

	// Сначала проверяем все записи, чтобы не зарегистрировать каталог частично
	for i, info := range file.Kinds {
		if info.ID == 0 {
			return 0, fmt.Errorf("запись %d: id должен быть больше нуля", i)
		}
		if info.MaxLife <= 0 {
			return 0, fmt.Errorf("тип %d (%s): max_life должен быть положительным", info.ID, info.Name)
		}
		if info.Mass < 0 {
			return 0, fmt.Errorf("тип %d (%s): отрицательная масса", info.ID, info.Name)
		}
	}

	for _, info := range file.Kinds {
		if info.Mass == 0 {
			info.Mass = 1
		}
		Register(info)
	}
	return len(file.Kinds), nil
}
