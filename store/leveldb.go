package store

import (
	"fmt"
	"time"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/fxamacker/cbor/v2"
	"github.com/syndtr/goleveldb/leveldb"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Key layout:
//
//	p/<hash>             program record
//	r/<id>               run record
//	x/<hash>/<id>        index entry, empty value
const (
	programPrefix = "p/"
	runPrefix     = "r/"
	indexPrefix   = "x/"
)

// LevelDBStore keeps the ledger in LevelDB with CBOR encoded values.
// LevelDB handles its own synchronization.
type LevelDBStore struct {
	db *leveldb.DB
}

var runEncMode cbor.EncMode

func init() {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("store: failed to create CBOR enc mode: %v", err))
	}
	runEncMode = em
}

type programValue struct {
	Name      string `cbor:"1,keyasint"`
	Image     []byte `cbor:"2,keyasint"`
	CreatedAt int64  `cbor:"3,keyasint"`
}

// OpenLevelDB opens or creates a LevelDB database at the given path.
// If path is empty, uses in-memory storage.
func OpenLevelDB(path string) (*LevelDBStore, error) {
	var db *leveldb.DB
	var err error

	if path == "" {
		db, err = leveldb.Open(leveldbstorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	log.Debugf("opened leveldb ledger %q", path)
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

func (s *LevelDBStore) PutProgram(name string, p intcode.Program) (string, error) {
	img := intcode.NewImage(name, p)
	key := []byte(programPrefix + img.Hash)

	if ok, err := s.db.Has(key, nil); err != nil {
		return "", fmt.Errorf("Has %s: %w", key, err)
	} else if ok {
		return img.Hash, nil
	}

	data, err := intcode.MarshalImage(img)
	if err != nil {
		return "", err
	}
	value, err := cbor.Marshal(programValue{Name: name, Image: data, CreatedAt: time.Now().UTC().UnixNano()})
	if err != nil {
		return "", fmt.Errorf("encoding program: %w", err)
	}
	if err := s.db.Put(key, value, nil); err != nil {
		return "", fmt.Errorf("Put %s: %w", key, err)
	}
	return img.Hash, nil
}

func (s *LevelDBStore) GetProgram(hash string) (*ProgramRecord, error) {
	data, err := s.db.Get([]byte(programPrefix+hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, fmt.Errorf("program %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get program %s: %w", hash, err)
	}

	var v programValue
	if err := cbor.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding program %s: %w", hash, err)
	}
	img, err := intcode.UnmarshalImage(v.Image)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", hash, err)
	}
	return &ProgramRecord{
		Hash:      hash,
		Name:      v.Name,
		Program:   img.Program(),
		CreatedAt: time.Unix(0, v.CreatedAt).UTC(),
	}, nil
}

func (s *LevelDBStore) RecordRun(r *Run) error {
	if err := prepareRun(r); err != nil {
		return err
	}
	value, err := runEncMode.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(runPrefix+r.ID), value)
	batch.Put([]byte(indexPrefix+r.Program+"/"+r.ID), nil)
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("saving run %s: %w", r.ID, err)
	}
	return nil
}

func (s *LevelDBStore) GetRun(id string) (*Run, error) {
	data, err := s.db.Get([]byte(runPrefix+id), nil)
	if err == leveldb.ErrNotFound {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get run %s: %w", id, err)
	}

	var r Run
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", id, err)
	}
	return &r, nil
}

func (s *LevelDBStore) Runs(programHash string) ([]*Run, error) {
	prefix := []byte(indexPrefix + programHash + "/")
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var runs []*Run
	for iter.Next() {
		id := string(iter.Key()[len(prefix):])
		r, err := s.GetRun(id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}
