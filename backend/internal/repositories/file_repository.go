package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
)

const (
	lotteriesFile    = "all_lotteries.json"
	applicationsFile = "applications.json"
)

// lotteryDump is the layout of all_lotteries.json.
type lotteryDump struct {
	Rentals []domain.Lottery `json:"rentals"`
	Sales   []domain.Lottery `json:"sales"`
}

func (d lotteryDump) all() []domain.Lottery {
	return append(append([]domain.Lottery{}, d.Rentals...), d.Sales...)
}

// FileRepository keeps everything as flat files in one directory:
// <type>_ids.txt with the IDs of the latest scrape, one per line,
// all_lotteries.json with every lottery ever seen, and applications.json.
type FileRepository struct {
	dir string
	mu  sync.Mutex
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) path(name string) string {
	return filepath.Join(r.dir, name)
}

// IDsFile is the name of the plain ID list written for t.
func IDsFile(t domain.LotteryType) string {
	return string(t) + "_ids.txt"
}

func (r *FileRepository) Save(_ context.Context, lotteries []domain.Lottery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dump, err := r.load()
	if err != nil {
		return err
	}
	all := dump.all()
	index := make(map[string]int, len(all))
	for i, l := range all {
		index[l.ID] = i
	}
	for _, l := range lotteries {
		if i, ok := index[l.ID]; ok {
			all[i] = l
			continue
		}
		index[l.ID] = len(all)
		all = append(all, l)
	}

	dump = lotteryDump{
		Rentals: filterByType(all, domain.Rental),
		Sales:   filterByType(all, domain.Sale),
	}
	if err := r.writeJSON(lotteriesFile, dump); err != nil {
		return err
	}
	return r.writeIDs(lotteries)
}

// writeIDs replaces the ID list of every type present in lotteries, so each
// list holds what the latest scrape of that type found.
func (r *FileRepository) writeIDs(lotteries []domain.Lottery) error {
	for _, t := range domain.LotteryTypes {
		batch := filterByType(lotteries, t)
		if len(batch) == 0 {
			continue
		}
		seen := make(map[string]bool, len(batch))
		ids := make([]string, 0, len(batch))
		for _, l := range batch {
			if seen[l.ID] {
				continue
			}
			seen[l.ID] = true
			ids = append(ids, l.ID)
		}
		if err := os.WriteFile(r.path(IDsFile(t)), []byte(strings.Join(ids, "\n")), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", IDsFile(t), err)
		}
	}
	return nil
}

func (r *FileRepository) FindAll(context.Context) ([]domain.Lottery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dump, err := r.load()
	if err != nil {
		return nil, err
	}
	return dump.all(), nil
}

func (r *FileRepository) FindByType(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterByType(all, t), nil
}

func (r *FileRepository) FindByID(ctx context.Context, id string) (domain.Lottery, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return domain.Lottery{}, err
	}
	for _, l := range all {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Lottery{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (r *FileRepository) SaveApplications(_ context.Context, runID string, results []domain.ApplicationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.loadApplications()
	if err != nil {
		return err
	}
	return r.writeJSON(applicationsFile, append(existing, withRunID(runID, results)...))
}

func (r *FileRepository) FindApplications(context.Context) ([]domain.ApplicationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadApplications()
}

func (r *FileRepository) Close() error { return nil }

func (r *FileRepository) load() (lotteryDump, error) {
	var dump lotteryDump
	err := r.readJSON(lotteriesFile, &dump)
	return dump, err
}

func (r *FileRepository) loadApplications() ([]domain.ApplicationResult, error) {
	var results []domain.ApplicationResult
	err := r.readJSON(applicationsFile, &results)
	return results, err
}

func (r *FileRepository) readJSON(name string, out interface{}) error {
	data, err := os.ReadFile(r.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// writeJSON replaces name atomically.
func (r *FileRepository) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(r.dir, name+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), r.path(name)); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
