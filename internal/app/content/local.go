package content

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"typerace/internal/app/race"
)

// wordBank holds the vocabulary for paragraph genres.
var wordBank = map[string][]string{
	"general": {
		"morning", "river", "window", "people", "garden", "quiet", "street", "coffee", "market", "journey",
		"simple", "light", "travel", "friend", "city", "evening", "music", "book", "weather", "bright",
	},
	"technical": {
		"network", "latency", "protocol", "database", "compiler", "memory", "thread", "packet", "server", "cache",
		"index", "query", "kernel", "buffer", "socket", "schema", "request", "handler", "timeout", "replica",
	},
	"creative": {
		"whisper", "lantern", "velvet", "ember", "horizon", "silver", "meadow", "echo", "tide", "feather",
		"crimson", "dream", "shadow", "orchard", "glimmer", "wander", "hollow", "saffron", "drift", "marble",
	},
}

// codeSnippets holds short programs per language and genre. A race text is two
// distinct snippets, so each genre needs at least two.
var codeSnippets = map[string]map[string][]string{
	race.LanguageJavaScript: {
		"algorithm": {
			"function binarySearch(arr, target) {\n  let lo = 0, hi = arr.length - 1;\n  while (lo <= hi) {\n    const mid = (lo + hi) >> 1;\n    if (arr[mid] === target) return mid;\n    if (arr[mid] < target) lo = mid + 1; else hi = mid - 1;\n  }\n  return -1;\n}",
			"function fibonacci(n) {\n  let a = 0, b = 1;\n  for (let i = 0; i < n; i++) {\n    [a, b] = [b, a + b];\n  }\n  return a;\n}",
			"function isPalindrome(s) {\n  const clean = s.toLowerCase().replace(/[^a-z0-9]/g, '');\n  return clean === [...clean].reverse().join('');\n}",
			"function maxSubarray(nums) {\n  let best = nums[0], cur = 0;\n  for (const n of nums) {\n    cur = Math.max(n, cur + n);\n    best = Math.max(best, cur);\n  }\n  return best;\n}",
		},
		"dataStructure": {
			"class Stack {\n  constructor() { this.items = []; }\n  push(x) { this.items.push(x); }\n  pop() { return this.items.pop(); }\n  peek() { return this.items[this.items.length - 1]; }\n}",
			"class Queue {\n  constructor() { this.items = []; }\n  enqueue(x) { this.items.push(x); }\n  dequeue() { return this.items.shift(); }\n  get size() { return this.items.length; }\n}",
			"class LinkedList {\n  constructor() { this.head = null; }\n  prepend(value) { this.head = { value, next: this.head }; }\n}",
			"class LRUCache {\n  constructor(limit) { this.limit = limit; this.map = new Map(); }\n  get(k) {\n    if (!this.map.has(k)) return undefined;\n    const v = this.map.get(k);\n    this.map.delete(k);\n    this.map.set(k, v);\n    return v;\n  }\n}",
		},
		"utility": {
			"function debounce(fn, wait) {\n  let timer;\n  return (...args) => {\n    clearTimeout(timer);\n    timer = setTimeout(() => fn(...args), wait);\n  };\n}",
			"const chunk = (arr, size) =>\n  Array.from({ length: Math.ceil(arr.length / size) }, (_, i) =>\n    arr.slice(i * size, i * size + size));",
			"const capitalize = (s) => s.charAt(0).toUpperCase() + s.slice(1);",
			"function groupBy(items, key) {\n  return items.reduce((acc, item) => {\n    (acc[item[key]] ||= []).push(item);\n    return acc;\n  }, {});\n}",
		},
	},
	race.LanguagePython: {
		"algorithm": {
			"def binary_search(arr, target):\n    lo, hi = 0, len(arr) - 1\n    while lo <= hi:\n        mid = (lo + hi) // 2\n        if arr[mid] == target:\n            return mid\n        if arr[mid] < target:\n            lo = mid + 1\n        else:\n            hi = mid - 1\n    return -1",
			"def gcd(a, b):\n    while b:\n        a, b = b, a % b\n    return a",
			"def is_palindrome(s):\n    clean = [c.lower() for c in s if c.isalnum()]\n    return clean == clean[::-1]",
			"def bubble_sort(items):\n    n = len(items)\n    for i in range(n):\n        for j in range(n - i - 1):\n            if items[j] > items[j + 1]:\n                items[j], items[j + 1] = items[j + 1], items[j]\n    return items",
		},
		"dataStructure": {
			"class Stack:\n    def __init__(self):\n        self.items = []\n\n    def push(self, item):\n        self.items.append(item)\n\n    def pop(self):\n        return self.items.pop()",
			"class Node:\n    def __init__(self, value):\n        self.value = value\n        self.next = None\n\n\nclass LinkedList:\n    def __init__(self):\n        self.head = None",
			"class Queue:\n    def __init__(self):\n        self.items = []\n\n    def enqueue(self, item):\n        self.items.append(item)\n\n    def dequeue(self):\n        return self.items.pop(0)",
			"class MinHeap:\n    def __init__(self):\n        self.data = []\n\n    def push(self, value):\n        heapq.heappush(self.data, value)\n\n    def pop(self):\n        return heapq.heappop(self.data)",
		},
		"utility": {
			"def chunk(items, size):\n    return [items[i:i + size] for i in range(0, len(items), size)]",
			"def flatten(nested):\n    for item in nested:\n        if isinstance(item, list):\n            yield from flatten(item)\n        else:\n            yield item",
			"def slugify(text):\n    return \"-\".join(text.lower().split())",
			"def retry(fn, attempts=3):\n    for i in range(attempts):\n        try:\n            return fn()\n        except Exception:\n            if i == attempts - 1:\n                raise",
		},
	},
}

// sentenceWords is the paragraph length per level, in words.
var sentenceWords = map[string]int{
	race.LevelBeginner:     25,
	race.LevelIntermediate: 40,
	race.LevelExpert:       60,
}

// LocalGenerator builds text without any network call.
type LocalGenerator struct{}

// NewLocalGenerator returns a LocalGenerator.
func NewLocalGenerator() *LocalGenerator {
	return &LocalGenerator{}
}

// Generate implements race.ContentGenerator.
func (LocalGenerator) Generate(_ context.Context, cfg race.ContentConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	if cfg.Type == race.TypeCode {
		snippets := codeSnippets[cfg.Language][cfg.Genre]
		first := pick(len(snippets))
		second := (first + 1 + pick(len(snippets)-1)) % len(snippets)
		return snippets[first] + "\n\n" + snippets[second], nil
	}

	words := wordBank[cfg.Genre]
	n := sentenceWords[cfg.Level]

	var b strings.Builder
	for i := range n {
		w := words[pick(len(words))]
		if i == 0 {
			w = strings.ToUpper(w[:1]) + w[1:]
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		if i%10 == 9 && i != n-1 {
			b.WriteByte(',')
		}
	}
	b.WriteByte('.')
	return b.String(), nil
}

func pick(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
