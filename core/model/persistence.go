package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/scigo/mixture/pkg/errors"
)

// SaveModel はモデル（またはModelWeights）をgob形式でファイルに保存する
//
// 使用例:
//
//	weights, err := gm.ExportWeights()
//	err = model.SaveModel(weights, "gmm.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	return SaveModelToWriter(model, file)
}

// LoadModel はgob形式のファイルからモデルを読み込む
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}

// SaveCompressed はモデルをgobでエンコードし、zstdで圧縮してwに書き込む。
// 共分散行列は次元の2乗で大きくなるため、スナップショットの保存に向く。
func SaveCompressed(model interface{}, w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "failed to create zstd writer")
	}
	if err := SaveModelToWriter(model, enc); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "failed to flush zstd stream")
	}
	return nil
}

// LoadCompressed はSaveCompressedで書き込まれたモデルを読み込む
func LoadCompressed(model interface{}, r io.Reader) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "failed to create zstd reader")
	}
	defer dec.Close()

	return LoadModelFromReader(model, dec)
}

// SaveCompressedFile はSaveCompressedのファイル版
func SaveCompressedFile(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	return SaveCompressed(model, file)
}

// LoadCompressedFile はLoadCompressedのファイル版
func LoadCompressedFile(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return LoadCompressed(model, file)
}
