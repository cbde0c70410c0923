package main

import "strings"

func main() {
	words := []string{"a", "b"}
	each := func(w string) string {
		u := strings.ToUpper(w)
		return u + "!"
	}
	for _, w := range words {
		if w == "" {
			panic("empty")
		}
		println(each(w))
	}
}

//<<<<<extract,8,3,8,26,pass,ACCESS_TO_LOCAL
//<<<<<extract,7,2,10,3,pass,ACCESS_TO_LOCAL
//<<<<<extract,12,3,14,4,pass,NO
//<<<<<extract,6,2,7,7,fail,EndsMidStatement
