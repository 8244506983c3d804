package metrics

import (
	"sort"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/scigo/mixture/pkg/errors"
)

// maxExhaustiveClusters はラベル対応付けを全順列で探索する上限。
// これを超える場合は貪欲法で近似する
const maxExhaustiveClusters = 8

// ContingencyMatrix は正解ラベルと予測ラベルの分割表を計算する
//
// 行は正解ラベル、列は予測ラベルのユニーク値（昇順）に対応する。
// table[i][j] は正解が i 番目、予測が j 番目のラベルであるサンプル数。
func ContingencyMatrix(trueLabels, predLabels []int) ([][]int, error) {
	table, _, _, err := contingency("ContingencyMatrix", trueLabels, predLabels)
	return table, err
}

func contingency(op string, trueLabels, predLabels []int) (table [][]int, classes, clusters []int, err error) {
	n := len(trueLabels)
	if n == 0 {
		return nil, nil, nil, errors.NewInvalidInputError(op, "empty labels")
	}
	if len(predLabels) != n {
		return nil, nil, nil, errors.NewDimensionError(op, n, len(predLabels), 0)
	}

	classes = uniqueSorted(trueLabels)
	clusters = uniqueSorted(predLabels)
	classIdx := indexOf(classes)
	clusterIdx := indexOf(clusters)

	table = make([][]int, len(classes))
	for i := range table {
		table[i] = make([]int, len(clusters))
	}
	for i := 0; i < n; i++ {
		table[classIdx[trueLabels[i]]][clusterIdx[predLabels[i]]]++
	}
	return table, classes, clusters, nil
}

// ClusteringAccuracy はクラスタラベルを正解ラベルに最適に対応付けたときの正解率を計算する
//
// クラスタ番号は任意なので、予測クラスタと正解クラスの一対一対応のうち
// 一致数が最大となるものを用いる。クラス数・クラスタ数の大きい方が8以下なら
// 全順列を探索し、それを超える場合は貪欲法で近似する。
func ClusteringAccuracy(trueLabels, predLabels []int) (float64, error) {
	table, _, _, err := contingency("ClusteringAccuracy", trueLabels, predLabels)
	if err != nil {
		return 0, err
	}

	size := len(table)
	if len(table[0]) > size {
		size = len(table[0])
	}
	// 正方行列にゼロ埋め
	square := make([][]int, size)
	for i := range square {
		square[i] = make([]int, size)
		if i < len(table) {
			copy(square[i], table[i])
		}
	}

	var matched int
	if size <= maxExhaustiveClusters {
		matched = bestAssignment(square)
	} else {
		matched = greedyAssignment(square)
	}
	return float64(matched) / float64(len(trueLabels)), nil
}

// bestAssignment は全順列から一致数の最大値を求める
func bestAssignment(table [][]int) int {
	n := len(table)
	best := 0
	gen := combin.NewPermutationGenerator(n, n)
	perm := make([]int, n)
	for gen.Next() {
		gen.Permutation(perm)
		sum := 0
		for i, j := range perm {
			sum += table[i][j]
		}
		if sum > best {
			best = sum
		}
	}
	return best
}

// greedyAssignment は最大のセルから順に行・列を確定させる
func greedyAssignment(table [][]int) int {
	n := len(table)
	usedRow := make([]bool, n)
	usedCol := make([]bool, n)
	total := 0
	for step := 0; step < n; step++ {
		bi, bj, bv := -1, -1, -1
		for i := 0; i < n; i++ {
			if usedRow[i] {
				continue
			}
			for j := 0; j < n; j++ {
				if !usedCol[j] && table[i][j] > bv {
					bi, bj, bv = i, j, table[i][j]
				}
			}
		}
		usedRow[bi], usedCol[bj] = true, true
		total += bv
	}
	return total
}

// AdjustedRandScore は調整ランド指数（ARI）を計算する
//
// ラベルの番号付けに依存せず、完全一致で1.0、ランダムな割り当てで期待値0となる。
// 両方が単一クラスタの場合など、分母が0になる場合は1.0を返す。
func AdjustedRandScore(trueLabels, predLabels []int) (float64, error) {
	table, _, _, err := contingency("AdjustedRandScore", trueLabels, predLabels)
	if err != nil {
		return 0, err
	}

	n := len(trueLabels)
	rowSums := make([]int, len(table))
	colSums := make([]int, len(table[0]))
	sumComb := 0.0
	for i, row := range table {
		for j, v := range row {
			rowSums[i] += v
			colSums[j] += v
			sumComb += pairs(v)
		}
	}

	sumA, sumB := 0.0, 0.0
	for _, a := range rowSums {
		sumA += pairs(a)
	}
	for _, b := range colSums {
		sumB += pairs(b)
	}

	expected := errors.SafeDivide(sumA*sumB, pairs(n))
	maxIndex := (sumA + sumB) / 2
	if maxIndex == expected {
		return 1.0, nil
	}
	return (sumComb - expected) / (maxIndex - expected), nil
}

// pairs は C(n, 2) を返す
func pairs(n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(combin.Binomial(n, 2))
}

func uniqueSorted(labels []int) []int {
	seen := make(map[int]struct{}, len(labels))
	var out []int
	for _, l := range labels {
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	sort.Ints(out)
	return out
}

func indexOf(values []int) map[int]int {
	idx := make(map[int]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}
